package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mklimstra/Juvonno-test/internal/api/router"
	"github.com/mklimstra/Juvonno-test/internal/cache"
	"github.com/mklimstra/Juvonno-test/internal/complaints"
	appconfig "github.com/mklimstra/Juvonno-test/internal/config"
	"github.com/mklimstra/Juvonno-test/internal/dashboard"
	"github.com/mklimstra/Juvonno-test/internal/juvonno"
	"github.com/mklimstra/Juvonno-test/internal/observability/metrics"
	"github.com/mklimstra/Juvonno-test/internal/roster"
	"github.com/mklimstra/Juvonno-test/internal/status"
	"github.com/mklimstra/Juvonno-test/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting training status dashboard API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Payload cache: shared redis when configured, in-process otherwise
	var store cache.Store
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisTLS)
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		store = cache.NewRedis(client)
		logger.Info("using redis payload cache", "addr", cfg.RedisAddr)
	} else {
		store = cache.NewMemory()
	}

	// Upstream client and metrics
	upstreamMetrics := metrics.NewUpstreamMetrics(nil)
	client := juvonno.NewClient(cfg.JuvonnoBaseURL, cfg.JuvonnoAPIKey, cfg.JuvonnoTimeout, upstreamMetrics, logger)

	// Domain services
	ros := roster.NewService(client, cfg.BranchID, cfg.AppointmentsSince, logger)
	resolver := status.NewResolver(client, store, upstreamMetrics, logger)
	reconciler := complaints.NewReconciler(client, store, upstreamMetrics, logger)
	svc := dashboard.NewService(ros, resolver, reconciler, logger)

	if cfg.SyncOnStartup {
		if err := ros.Sync(context.Background()); err != nil {
			logger.Error("initial roster sync failed, continuing with empty roster", "error", err)
		}
	}

	// Setup router
	r := router.New(&router.Config{
		Logger:         logger,
		Dashboard:      dashboard.NewHandler(svc, prometheus.DefaultGatherer, logger),
		Roster:         ros,
		MetricsHandler: promhttp.Handler(),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
