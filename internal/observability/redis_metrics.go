package observability

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentRedisClient attaches command metrics to the shared redis
// client used by the rate limiter.
func InstrumentRedisClient(client redis.UniversalClient, logger *slog.Logger) {
	hook, err := newRedisMetricsHook()
	if err != nil {
		logger.Warn("redis metrics hook not installed", "error", err)
		return
	}
	client.AddHook(hook)
}

type redisMetricsHook struct {
	commandCounter  metric.Int64Counter
	commandDuration metric.Float64Histogram
}

func newRedisMetricsHook() (*redisMetricsHook, error) {
	meter := otel.GetMeterProvider().Meter("salon-backend/redis")
	counter, err := meter.Int64Counter("redis.commands")
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("redis.command.duration", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &redisMetricsHook{commandCounter: counter, commandDuration: duration}, nil
}

func (h *redisMetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *redisMetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.record(ctx, strings.ToLower(cmd.Name()), err, time.Since(start))
		return err
	}
}

func (h *redisMetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.record(ctx, "pipeline", err, time.Since(start))
		return err
	}
}

func (h *redisMetricsHook) record(ctx context.Context, command string, err error, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("status", redisCommandStatus(err)),
	)
	h.commandCounter.Add(ctx, 1, attrs)
	h.commandDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("command", command)))
}

func redisCommandStatus(err error) string {
	switch {
	case err == nil, errors.Is(err, redis.Nil):
		return "ok"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "error"
	}
}
