package energy

import (
	"math"
	"strconv"
	"strings"
	"time"

	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

// NILMParams carries the raw query string values of a NILM list request.
type NILMParams struct {
	Building  string
	Location  string
	StartTime string
	EndTime   string
	Sort      string
	Limit     string
}

type PVParams struct {
	StartTime string
	EndTime   string
	Sort      string
	Limit     string
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// Parsing never fails. A value that cannot be understood is treated as if it
// had not been sent.

func ParseNILMQuery(p NILMParams) models.NILMQuery {
	return models.NILMQuery{
		SiteFilter: ParseSiteFilter(p.Building, p.Location),
		Start:      ParseTime(p.StartTime),
		End:        ParseTime(p.EndTime),
		Sort:       ParseSort(p.Sort),
		Limit:      ParseLimit(p.Limit),
	}
}

func ParsePVQuery(p PVParams) models.PVQuery {
	return models.PVQuery{
		StartTime: ParseHour(p.StartTime),
		EndTime:   ParseHour(p.EndTime),
		Sort:      ParseSort(p.Sort),
		Limit:     ParseLimit(p.Limit),
	}
}

// ParseSiteFilter keeps unknown values; they simply match nothing.
func ParseSiteFilter(building, location string) models.SiteFilter {
	return models.SiteFilter{
		Building: models.Building(strings.TrimSpace(building)),
		Location: models.Location(strings.TrimSpace(location)),
	}
}

// ParseTime accepts epoch milliseconds or one of timeLayouts.
func ParseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if ms, ok := parseFinite(raw); ok {
		if !fitsInt64(ms) {
			return nil
		}
		t := time.UnixMilli(int64(ms)).UTC()
		return &t
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// ParseHour parses a bound on the PV hour offset. Fractions are truncated.
func ParseHour(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &n
	}
	if f, ok := parseFinite(raw); ok && fitsInt64(f) {
		n := int64(math.Trunc(f))
		return &n
	}
	return nil
}

func ParseSort(raw string) models.SortOrder {
	if strings.TrimSpace(raw) == "1" {
		return models.SortAscending
	}
	return models.SortDescending
}

// ParseLimit returns DefaultLimit for a missing or unreadable value and 0
// (no cap) for anything <= 0.
func ParseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.DefaultLimit
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ok := parseFinite(raw)
		if !ok || f >= math.MaxInt || f < math.MinInt {
			return models.DefaultLimit
		}
		n = int(math.Trunc(f))
	}

	if n <= 0 {
		return 0
	}
	return n
}

func parseFinite(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// fitsInt64 rejects values whose conversion to int64 would overflow.
func fitsInt64(f float64) bool {
	return f >= math.MinInt64 && f < math.MaxInt64
}
