package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
)

type HealthStatus string

const (
	Healthy  HealthStatus = "healthy"
	Degraded HealthStatus = "degraded"
	Offline  HealthStatus = "offline"
)

type ServiceHealth struct {
	Status    HealthStatus    `json:"status"`
	LatencyMs int64           `json:"latencyMs"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Health probes GET /health on every configured service concurrently.
func (g *Gateway) Health(ctx context.Context) map[Service]ServiceHealth {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = make(map[Service]ServiceHealth, len(Services))
	)

	for _, svc := range Services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := g.probe(ctx, svc)
			mu.Lock()
			out[svc] = h
			mu.Unlock()
		}()
	}
	wg.Wait()

	return out
}

func (g *Gateway) probe(ctx context.Context, svc Service) ServiceHealth {
	logger := common.GetLoggerWith(
		common.LoggerNameGateway,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryHealth),
		zap.String("service", string(svc)),
	)

	u, err := g.url(svc, "/health", "")
	if err != nil {
		return ServiceHealth{Status: Offline, Error: err.Error()}
	}

	if g.healthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.healthTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ServiceHealth{Status: Offline, Error: err.Error()}
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		logger.Debug("Prediction service unreachable", zap.Error(err))
		return ServiceHealth{Status: Offline, Error: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	h := ServiceHealth{
		Status:    classify(resp.StatusCode, body),
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if json.Valid(body) {
		h.Detail = body
	}
	if h.Status != Healthy {
		logger.Info("Prediction service not healthy", zap.Int("status", resp.StatusCode))
	}
	return h
}

// classify: a 2xx whose body reports healthy, ok or nothing at all is
// healthy; any other answer is degraded.
func classify(statusCode int, body []byte) HealthStatus {
	if statusCode < 200 || statusCode >= 300 {
		return Degraded
	}

	var parsed struct {
		Status *string `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Status == nil {
		return Healthy
	}

	switch strings.ToLower(*parsed.Status) {
	case "healthy", "ok", "up", "":
		return Healthy
	default:
		return Degraded
	}
}
