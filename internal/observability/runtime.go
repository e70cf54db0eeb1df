package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/glowbook/salon-backend/internal/config"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Runtime bundles the providers behind the salon backend's three
// telemetry signals so main can shut them down as one unit.
type Runtime struct {
	LoggerProvider *sdklog.LoggerProvider
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
}

// InitRuntime brings up logs, metrics and tracing in that order. If a
// later signal fails, the ones already started are shut down again so
// a half-initialized runtime never leaks exporters.
func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}

	lp, err := InitLogs(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	rt.LoggerProvider = lp

	mp, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		_ = rt.Shutdown(ctx)
		return nil, err
	}
	rt.MeterProvider = mp

	tp, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		_ = rt.Shutdown(ctx)
		return nil, err
	}
	rt.TracerProvider = tp
	return rt, nil
}

// Shutdown flushes in reverse init order; traces and metrics drain
// while the logger provider is still up to carry their export errors.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.TracerProvider != nil {
		errs = append(errs, r.TracerProvider.Shutdown(ctx))
	}
	if r.MeterProvider != nil {
		errs = append(errs, r.MeterProvider.Shutdown(ctx))
	}
	if r.LoggerProvider != nil {
		errs = append(errs, r.LoggerProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
