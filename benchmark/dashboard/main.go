package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

var maxDashboards = flag.Int("dashboards", 200, "concurrent simulated dashboards")
var httpHostPort = flag.String("addr", "127.0.0.1:3001", "API host:port")
var window = flag.Duration("window", 6*time.Hour, "list window ending at the latest reading")

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

var client = &http.Client{Timeout: 30 * time.Second}

var failures atomic.Int64
var violations atomic.Int64

type rangeResponse struct {
	Success bool              `json:"success"`
	Count   int64             `json:"count"`
	Range   *models.TimeRange `json:"range"`
}

type listResponse struct {
	Success bool                `json:"success"`
	Count   int                 `json:"count"`
	Data    []models.NILMRecord `json:"data"`
}

type latestResponse struct {
	Success bool               `json:"success"`
	Data    *models.NILMRecord `json:"data"`
}

func main() {
	flag.Parse()

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", *httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	startTime := time.Now()
	wg := sync.WaitGroup{}
	for i := range *maxDashboards {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, l := pickSite()
			refresh(b, l)
			fmt.Printf("\rrefreshed dashboard %v (%s/%s)", i, b, l)
		}()
	}
	wg.Wait()
	usedTime := time.Since(startTime)

	fmt.Printf(
		"\n\rrefreshed %v dashboards: used time=%v seconds, throughput=%v request/second, failures=%v, violations=%v\n",
		*maxDashboards, usedTime.Seconds(), float64(*maxDashboards*3)/usedTime.Seconds(),
		failures.Load(), violations.Load(),
	)
}

func pickSite() (models.Building, models.Location) {
	rndMu.Lock()
	defer rndMu.Unlock()
	return models.Buildings[rnd.Intn(len(models.Buildings))], models.Locations[rnd.Intn(len(models.Locations))]
}

func getJSON(path string, query url.Values, out any) bool {
	u := fmt.Sprintf("http://%s%s?%s", *httpHostPort, path, query.Encode())
	resp, err := client.Get(u)
	if err != nil {
		fmt.Printf("\nerror: %v\n", err)
		failures.Add(1)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("\nresponse status code != 200: %v %v\n", u, resp.StatusCode)
		failures.Add(1)
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		fmt.Printf("\ndecode error: %v\n", err)
		failures.Add(1)
		return false
	}
	return true
}

// refresh does what one dashboard does on load: range discovery, a window of
// readings ending at the newest one, then the latest reading.
func refresh(b models.Building, l models.Location) {
	site := url.Values{"building": {string(b)}, "location": {string(l)}}

	var rng rangeResponse
	if !getJSON("/api/data/nilm/range", site, &rng) {
		return
	}

	var latest latestResponse
	if rng.Range == nil {
		if getJSON("/api/data/nilm/latest", site, &latest) && latest.Data != nil {
			fmt.Printf("\nlatest present for empty site %s/%s\n", b, l)
			violations.Add(1)
		}
		return
	}

	q := url.Values{
		"building":  {string(b)},
		"location":  {string(l)},
		"startTime": {fmt.Sprint(rng.Range.MaxDate.Add(-*window).UnixMilli())},
		"endTime":   {fmt.Sprint(rng.Range.MaxDate.UnixMilli())},
		"sort":      {"1"},
		"limit":     {"0"},
	}
	var list listResponse
	if getJSON("/api/data/nilm", q, &list) {
		if int64(list.Count) > rng.Count {
			violations.Add(1)
		}
		for i := 1; i < len(list.Data); i++ {
			if list.Data[i].Timestamp.Before(list.Data[i-1].Timestamp) {
				violations.Add(1)
				break
			}
		}
	}

	if getJSON("/api/data/nilm/latest", site, &latest) {
		if latest.Data == nil || !latest.Data.Timestamp.Equal(rng.Range.MaxDate) {
			fmt.Printf("\nlatest does not match range max for %s/%s\n", b, l)
			violations.Add(1)
		}
	}
}
