package main

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"loancalc/internal/cache"
	"loancalc/internal/config"
	"loancalc/internal/loan"
	"loancalc/internal/observability"
)

// initTelemetry starts tracing, OTLP log export and metrics, and registers
// the loan instruments. The returned shutdown flushes all three.
func initTelemetry(ctx context.Context) (func(context.Context) error, error) {
	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	for _, start := range []func(context.Context) (func(context.Context) error, error){
		observability.InitTracing,
		observability.InitLogging,
		observability.InitMetrics,
	} {
		stop, err := start(ctx)
		if err != nil {
			_ = shutdown(ctx)
			return nil, err
		}
		shutdowns = append(shutdowns, stop)
	}

	if err := loan.InitMetrics(); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	if err := observability.RegisterBuildInfo(prometheus.DefaultRegisterer); err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return shutdown, nil
}

// newCache picks Redis when an address is configured and falls back to
// the in-process cache otherwise. The returned close func is never nil.
func newCache(ctx context.Context, cfg config.Config) (cache.Cache, func() error, error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache(), func() error { return nil }, nil
	}

	rc := cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName+":")
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, err
	}
	return rc, rc.Close, nil
}
