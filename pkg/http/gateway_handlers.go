package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/gateway"
)

// Proxy relays one gateway route. Upstream answers keep their status; only
// transport failures are mapped here.
func (rs *RestfulServer) Proxy(route gateway.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body io.Reader
		if c.Request.Method != http.MethodGet && c.Request.Body != nil {
			body = c.Request.Body
		}

		resp, err := rs.Gateway.Forward(c.Request.Context(), route, c.Request.URL.RawQuery, body, c.GetHeader("Content-Type"))
		if err != nil {
			status := http.StatusInternalServerError
			reason := "error"
			switch {
			case errors.Is(err, gateway.ErrUpstreamTimeout):
				status, reason = http.StatusGatewayTimeout, "timeout"
			case errors.Is(err, gateway.ErrUpstreamUnavailable):
				status, reason = http.StatusBadGateway, "unavailable"
			}
			rs.Metrics.proxyError(string(route.Service), reason)
			serverLogger().Warn("Prediction gateway call failed",
				zap.String("service", string(route.Service)),
				zap.String("path", route.Path),
				zap.Error(err),
			)

			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		contentType := resp.ContentType
		if contentType == "" {
			contentType = "application/json; charset=utf-8"
		}
		c.Data(resp.StatusCode, contentType, resp.Body)
	}
}
