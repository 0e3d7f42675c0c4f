package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
	"liyu1981.xyz/energy-dashboard-service/pkg/auth"
	"liyu1981.xyz/energy-dashboard-service/pkg/energy"
	"liyu1981.xyz/energy-dashboard-service/pkg/gateway"
	"liyu1981.xyz/energy-dashboard-service/pkg/ingest"
)

// ImportPaths are the sources used by the admin import endpoint.
type ImportPaths struct {
	NILMDir string
	PVCSV   string
}

type RestfulServer struct {
	Server   *gin.Engine
	Energy   *energy.Energy
	Gateway  *gateway.Gateway
	Auth     auth.IAuth
	Importer *ingest.Importer
	Imports  ImportPaths

	RateLimiterStore *RateLimiterStore
	Metrics          *Metrics
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

func (rs *RestfulServer) GetLimiter(clientIP string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(clientIP)
	}
}

func (rs *RestfulServer) CheckClientLimiter(clientIP string) bool {
	limiter := rs.GetLimiter(clientIP)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(clientIP string, clientRate float64, clientBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(clientIP, rate.Limit(clientRate), clientBurst)
}

func (rs *RestfulServer) Setup() {
	if rs.Metrics != nil {
		rs.Server.Use(rs.Metrics.Middleware())
	}

	rs.Server.GET("/healthz", rs.HealthCheck)
	rs.Server.GET("/metrics", rs.PrometheusHandler())

	api := rs.Server.Group("/api", rs.RateLimit())
	api.GET("/health", rs.ServiceHealth)

	if rs.Auth != nil {
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", rs.Signup)
			authRoutes.POST("/login", rs.Login)
			authRoutes.GET("/me", rs.RequireAuth(), rs.Me)
			authRoutes.POST("/logout", rs.RequireAuth(), rs.Logout)
		}
	}

	nilm := api.Group("/data/nilm")
	{
		nilm.GET("", rs.ListNILM)
		nilm.GET("/range", rs.NILMRange)
		nilm.GET("/latest", rs.LatestNILM)
		nilm.GET("/stats", rs.NILMStats)
		nilm.GET("/breakdown", rs.NILMBreakdown)
		nilm.DELETE("", rs.RequireAuth(), rs.RequireAdmin(), rs.ClearNILM)
	}

	pv := api.Group("/data/pv")
	{
		pv.GET("", rs.ListPV)
		pv.GET("/latest", rs.LatestPV)
		pv.GET("/random", rs.RandomPV)
		pv.DELETE("", rs.RequireAuth(), rs.RequireAdmin(), rs.ClearPV)
	}

	if rs.Importer != nil {
		api.POST("/admin/import", rs.RequireAuth(), rs.RequireAdmin(), rs.Import)
	}

	if rs.Gateway != nil {
		for _, route := range gateway.Routes {
			rs.Server.Handle(route.Method, route.Path, rs.RateLimit(), rs.Proxy(route))
		}
	}
}
