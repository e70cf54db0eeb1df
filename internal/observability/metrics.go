package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/glowbook/salon-backend/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
)

type AppMetrics struct {
	authAttemptCounter           metric.Int64Counter
	authReqDuration              metric.Float64Histogram
	accessTokenValidationCounter metric.Int64Counter
	rateLimitDecisionCounter     metric.Int64Counter
	rateLimitRetryAfter          metric.Float64Histogram
	userProfileCounter           metric.Int64Counter
	catalogOpDuration            metric.Float64Histogram
	bookingOpDuration            metric.Float64Histogram
	healthCheckResultCounter     metric.Int64Counter
	healthCheckDuration          metric.Float64Histogram
	dbStartupEventCounter        metric.Int64Counter
	dbStartupDuration            metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "auth.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter("salon-backend")
	authAttempts, err := meter.Int64Counter("auth.attempts")
	if err != nil {
		return nil, err
	}
	authReqDuration, err := meter.Float64Histogram("auth.request.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	tokenValidations, err := meter.Int64Counter("auth.token.validations")
	if err != nil {
		return nil, err
	}
	rateLimitDecisions, err := meter.Int64Counter("http.rate_limit.decisions")
	if err != nil {
		return nil, err
	}
	rateLimitRetryAfter, err := meter.Float64Histogram("http.rate_limit.retry_after", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	userProfileEvents, err := meter.Int64Counter("user.profile.events")
	if err != nil {
		return nil, err
	}
	catalogOpDuration, err := meter.Float64Histogram("catalog.operation.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	bookingOpDuration, err := meter.Float64Histogram("booking.operation.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	healthResults, err := meter.Int64Counter("health.check.results")
	if err != nil {
		return nil, err
	}
	healthDuration, err := meter.Float64Histogram("health.check.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	dbStartupEvents, err := meter.Int64Counter("database.startup.events")
	if err != nil {
		return nil, err
	}
	dbStartupDuration, err := meter.Float64Histogram("database.startup.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	appMetrics = &AppMetrics{
		authAttemptCounter:           authAttempts,
		authReqDuration:              authReqDuration,
		accessTokenValidationCounter: tokenValidations,
		rateLimitDecisionCounter:     rateLimitDecisions,
		rateLimitRetryAfter:          rateLimitRetryAfter,
		userProfileCounter:           userProfileEvents,
		catalogOpDuration:            catalogOpDuration,
		bookingOpDuration:            bookingOpDuration,
		healthCheckResultCounter:     healthResults,
		healthCheckDuration:          healthDuration,
		dbStartupEventCounter:        dbStartupEvents,
		dbStartupDuration:            dbStartupDuration,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func current() *AppMetrics {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	return m
}

// RecordAuthAttempt counts register/login/refresh/logout outcomes.
func RecordAuthAttempt(ctx context.Context, endpoint, status string) {
	m := current()
	if m == nil {
		return
	}
	m.authAttemptCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

func RecordAuthRequestDuration(ctx context.Context, endpoint, status string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.authReqDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

func RecordAccessTokenValidation(ctx context.Context, outcome, source string) {
	m := current()
	if m == nil {
		return
	}
	m.accessTokenValidationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("source", source),
	))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome, mode, keyType string) {
	m := current()
	if m == nil {
		return
	}
	m.rateLimitDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
		attribute.String("mode", mode),
		attribute.String("key_type", keyType),
	))
}

func RecordRateLimitRetryAfter(ctx context.Context, scope, reason string, retryAfter time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.rateLimitRetryAfter.Record(ctx, retryAfter.Seconds(), metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("reason", reason),
	))
}

func RecordUserProfileEvent(ctx context.Context, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.userProfileCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordCatalogOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.catalogOpDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordBookingOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.bookingOpDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("check", check),
	))
}

func RecordDatabaseStartupEvent(ctx context.Context, phase, outcome string) {
	m := current()
	if m == nil {
		return
	}
	m.dbStartupEventCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("outcome", outcome),
	))
}

func RecordDatabaseStartupDuration(ctx context.Context, phase string, duration time.Duration) {
	m := current()
	if m == nil {
		return
	}
	m.dbStartupDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("phase", phase),
	))
}
