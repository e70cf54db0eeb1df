package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/glowbook/salon-backend/internal/config"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	otlploggrpc "go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/trace"
)

// fanoutHandler delivers each record to every sink. A record is
// dropped by a sink only if that sink's level filter rejects it; a
// failing sink does not stop delivery to the others.
type fanoutHandler []slog.Handler

func (f fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanoutHandler, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (f fanoutHandler) WithGroup(name string) slog.Handler {
	next := make(fanoutHandler, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}

// traceStamper copies the active span's ids onto each record so a log
// line can be joined to its trace. Records logged outside a span are
// passed through untouched.
type traceStamper struct {
	next slog.Handler
}

func (t *traceStamper) Enabled(ctx context.Context, level slog.Level) bool {
	return t.next.Enabled(ctx, level)
}

func (t *traceStamper) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return t.next.Handle(ctx, r)
}

func (t *traceStamper) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceStamper{next: t.next.WithAttrs(attrs)}
}

func (t *traceStamper) WithGroup(name string) slog.Handler {
	return &traceStamper{next: t.next.WithGroup(name)}
}

var (
	loggerMu     sync.RWMutex
	globalLogger *slog.Logger
)

func stdoutHandler(level slog.Level) slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}

// NewLogger returns the process logger installed by InitLogger, or a
// plain JSON stdout logger when initialization has not run yet (early
// startup, tests).
func NewLogger() *slog.Logger {
	loggerMu.RLock()
	l := globalLogger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}
	return slog.New(stdoutHandler(slog.LevelInfo))
}

// NewBootstrapLogger is used before the OTLP pipeline exists, so that
// provider setup itself has somewhere to log.
func NewBootstrapLogger(cfg *config.Config) *slog.Logger {
	return slog.New(stdoutHandler(parseLogLevel(cfg.OTELLogLevel)))
}

// InitLogger installs the process logger: stdout JSON always, plus the
// OTLP bridge when log export is enabled. Every record passes through
// the trace stamper first.
func InitLogger(cfg *config.Config, lp *sdklog.LoggerProvider) *slog.Logger {
	sinks := fanoutHandler{stdoutHandler(parseLogLevel(cfg.OTELLogLevel))}
	if cfg.OTELLogsEnabled && lp != nil {
		sinks = append(sinks, otelslog.NewHandler(cfg.OTELServiceName, otelslog.WithLoggerProvider(lp)))
	}

	l := slog.New(&traceStamper{next: sinks})
	loggerMu.Lock()
	globalLogger = l
	loggerMu.Unlock()
	slog.SetDefault(l)
	return l
}

func InitLogs(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdklog.LoggerProvider, error) {
	if !cfg.OTELLogsEnabled {
		logger.Info("otel logs disabled")
		return nil, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp log exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	logger.Info("otel logs initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return lp, nil
}

func parseLogLevel(v string) slog.Level {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
