package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/energy"
)

// retryAfterSeconds is sent with 503 on query timeouts.
const retryAfterSeconds = 5

func serverLogger() *zap.Logger {
	return common.GetLogger().Named(common.LoggerNameRestfulServer)
}

// fail answers a store failure. Internal detail is only exposed outside
// production.
func fail(c *gin.Context, action string, err error) {
	serverLogger().Error("Server error while "+action,
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)

	if errors.Is(err, energy.ErrQueryTimeout) {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success":   false,
			"error":     "Query timed out while " + action,
			"retryable": true,
		})
		return
	}

	body := gin.H{
		"success": false,
		"error":   "Server error while " + action,
	}
	if !common.IsProduction() {
		body["message"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
