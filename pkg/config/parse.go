package config

import (
	"fmt"
	"strconv"
	"strings"
)

type RateOverride struct {
	ClientIP string
	Rate     float64
	Burst    int
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// parseRateOverrides reads "ip=rate:burst" entries separated by commas.
func parseRateOverrides(s string) ([]RateOverride, error) {
	var out []RateOverride
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		ip, limit, ok := strings.Cut(entry, "=")
		ip = strings.TrimSpace(ip)
		if !ok || ip == "" {
			return nil, fmt.Errorf("invalid entry %q, want ip=rate:burst", entry)
		}
		rateStr, burstStr, ok := strings.Cut(limit, ":")
		if !ok {
			return nil, fmt.Errorf("invalid entry %q, want ip=rate:burst", entry)
		}
		r, err := parseFloat(rateStr)
		if err != nil || r < 0 {
			return nil, fmt.Errorf("invalid rate in %q", entry)
		}
		b, err := parseInt(burstStr)
		if err != nil || b < 1 {
			return nil, fmt.Errorf("invalid burst in %q", entry)
		}
		out = append(out, RateOverride{ClientIP: ip, Rate: r, Burst: b})
	}
	return out, nil
}
