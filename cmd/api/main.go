package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"loancalc/internal/config"
	"loancalc/internal/loan"
	"loancalc/internal/observability"
	"loancalc/internal/server"
)

func main() {

	ctx := context.Background()

	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		panic(err)
	}
	observability.SetServiceName(cfg.ServiceName)

	// Logger
	if err := observability.InitLogger(); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, log export, metrics
	telemetryShutdown, err := initTelemetry(ctx)
	if err != nil {
		observability.Logger.Fatal("telemetry setup failed", zap.Error(err))
	}
	defer telemetryShutdown(ctx)

	// Result cache
	resultCache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		observability.Logger.Fatal("cache setup failed", zap.String("redis_addr", cfg.RedisAddr), zap.Error(err))
	}
	defer closeCache()

	svc := loan.NewService(resultCache, cfg.Limits(), cfg.Epsilon, cfg.CacheTTL)

	// Router
	router := server.NewRouter(svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.Float64("epsilon", cfg.Epsilon),
			zap.Int("max_brute_force_iterations", cfg.MaxBruteForceIterations),
			zap.Int("max_bisection_iterations", cfg.MaxBisectionIterations),
			zap.Bool("redis_cache", cfg.RedisAddr != ""),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv)
}

func waitForShutdown(srv *http.Server) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("shutdown failed", zap.Error(err))
		return
	}
	observability.Logger.Info("server stopped")
}
