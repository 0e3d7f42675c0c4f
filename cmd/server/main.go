package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"liyu1981.xyz/energy-dashboard-service/pkg/auth"
	"liyu1981.xyz/energy-dashboard-service/pkg/bootstrap"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/config"
	"liyu1981.xyz/energy-dashboard-service/pkg/energy"
	"liyu1981.xyz/energy-dashboard-service/pkg/gateway"
	energyHttp "liyu1981.xyz/energy-dashboard-service/pkg/http"
	"liyu1981.xyz/energy-dashboard-service/pkg/ingest"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration, copy .env.example to .env first if in development: %v", err)
	}

	common.InitLogger(common.LogOptions{Dir: cfg.LogDir})
	defer common.SyncLogger()
	logger := common.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}

	energyCore := energy.New(stores.Data, cfg.QueryTimeout)

	importer := ingest.New(stores.Data)
	importer.Metrics = ingest.NewMetrics(prometheus.DefaultRegisterer)

	var limiterStore *energyHttp.RateLimiterStore
	if cfg.RateLimit > 0 {
		limiterStore = energyHttp.NewRateLimiterStore(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rs := &energyHttp.RestfulServer{
		Server: gin.Default(),
		Energy: energyCore,
		Gateway: gateway.New(map[gateway.Service]string{
			gateway.ServiceNILM:    cfg.NILMAPIURL,
			gateway.ServicePV:      cfg.PVAPIURL,
			gateway.ServiceChatbot: cfg.ChatbotAPIURL,
		}, cfg.GatewayTimeout, cfg.HealthTimeout),
		Auth:     auth.New(stores.Auth.Conn, cfg.SessionTTL, cfg.AdminEmails...),
		Importer: importer,
		Imports: energyHttp.ImportPaths{
			NILMDir: cfg.NILMDataDir,
			PVCSV:   cfg.PVCSVPath,
		},
		RateLimiterStore: limiterStore,
		Metrics:          energyHttp.NewMetrics(prometheus.DefaultRegisterer),
	}
	rs.Setup()
	for _, o := range cfg.RateOverrides {
		rs.SetLimiter(o.ClientIP, o.Rate, o.Burst)
	}

	logger.Info("http server created with:",
		zap.String("store", string(cfg.StoreType)),
		zap.Duration("query_timeout", cfg.QueryTimeout),
		zap.String("default_limiter",
			fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", cfg.RateLimit, cfg.RateBurst)),
		zap.Int("limiter_overrides", len(cfg.RateOverrides)))

	server := &http.Server{
		Addr:              cfg.HTTPHostPort,
		Handler:           rs.Server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting HTTP server on: " + cfg.HTTPHostPort)
	ln, err := net.Listen("tcp", cfg.HTTPHostPort)
	if err != nil {
		logger.Error("http server failed to listen", zap.Error(err))
	} else if err := serve(ctx, server, ln, logger); err != nil {
		logger.Error("http server failed to serve", zap.Error(err))
	}

	if err := stores.Close(); err != nil {
		logger.Error("Failed to close store", zap.Error(err))
	}
	logger.Info("Server shutdown complete")
}

// serve runs server on ln until ctx is done, then returns once in-flight
// requests have drained or shutdownTimeout elapsed.
func serve(ctx context.Context, server *http.Server, ln net.Listener, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		logger.Info("Shutdown signal received, draining http server")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown failed", zap.Error(err))
		}
	}()

	err := server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	// Serve returns as soon as Shutdown starts.
	cancel()
	<-drained
	return err
}
