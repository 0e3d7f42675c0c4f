package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/gateway"
)

const storePingTimeout = 2 * time.Second

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ServiceHealth reports the store and every prediction service. It always
// answers 200; the body carries the verdicts.
func (rs *RestfulServer) ServiceHealth(c *gin.Context) {
	status := "healthy"
	storeStatus := "up"

	ctx, cancel := context.WithTimeout(c.Request.Context(), storePingTimeout)
	defer cancel()
	if err := rs.Energy.Store.Ping(ctx); err != nil {
		common.GetLoggerWith(
			common.LoggerNameRestfulServer,
			zap.String(common.LoggerFieldCategory, common.LoggerCategoryHealth),
		).Warn("Store ping failed", zap.Error(err))
		status = "degraded"
		storeStatus = "down"
	}

	services := map[gateway.Service]gateway.ServiceHealth{}
	if rs.Gateway != nil {
		services = rs.Gateway.Health(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"store":     storeStatus,
		"services":  services,
	})
}
