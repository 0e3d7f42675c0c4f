package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
)

// maxResponseBytes caps how much of an upstream body is relayed.
const maxResponseBytes = 32 << 20

var (
	ErrUnknownService      = errors.New("unknown prediction service")
	ErrUpstreamTimeout     = errors.New("prediction service timed out")
	ErrUpstreamUnavailable = errors.New("prediction service unavailable")
)

type Gateway struct {
	baseURLs      map[Service]string
	client        *http.Client
	healthTimeout time.Duration
}

func New(baseURLs map[Service]string, timeout, healthTimeout time.Duration) *Gateway {
	urls := make(map[Service]string, len(baseURLs))
	for svc, base := range baseURLs {
		urls[svc] = strings.TrimRight(base, "/")
	}
	return &Gateway{
		baseURLs:      urls,
		client:        &http.Client{Timeout: timeout},
		healthTimeout: healthTimeout,
	}
}

// Response is what the caller gets back: the upstream body untouched for 2xx
// answers, otherwise a JSON {"error": ...} carrying the upstream status.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type errorBody struct {
	Error string `json:"error"`
}

func (g *Gateway) url(svc Service, path, rawQuery string) (string, error) {
	base, ok := g.baseURLs[svc]
	if !ok || base == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownService, svc)
	}
	u := base + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u, nil
}

// Forward relays one call. Errors are returned only when no upstream answer
// was received; no retry is attempted.
func (g *Gateway) Forward(ctx context.Context, route Route, rawQuery string, body io.Reader, contentType string) (*Response, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameGateway,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryProxy),
		zap.String("service", string(route.Service)),
		zap.String("upstream", route.Upstream),
	)

	u, err := g.url(route.Service, route.Upstream, rawQuery)
	if err != nil {
		return nil, err
	}

	if route.DropBody {
		body = nil
	}
	req, err := http.NewRequestWithContext(ctx, route.Method, u, body)
	if err != nil {
		return nil, err
	}
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		logger.Warn("Prediction service request failed", zap.Error(err))
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s", ErrUpstreamTimeout, route.Service)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		logger.Warn("Failed to read prediction service response", zap.Error(err))
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s", ErrUpstreamTimeout, route.Service)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	logger.Debug("Prediction service answered",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        data,
		}, nil
	}

	logger.Info("Prediction service returned an error", zap.Int("status", resp.StatusCode))

	out, _ := json.Marshal(errorBody{Error: upstreamError(data, resp.StatusCode)})
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: "application/json; charset=utf-8",
		Body:        out,
	}, nil
}

// upstreamError prefers the service's own "error" field.
func upstreamError(body []byte, status int) string {
	var parsed struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch e := parsed.Error.(type) {
		case string:
			if e != "" {
				return e
			}
		case nil:
		default:
			if b, err := json.Marshal(e); err == nil {
				return string(b)
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("upstream status %d", status)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
