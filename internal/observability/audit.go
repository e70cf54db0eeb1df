package observability

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// Audit records security-relevant actions on salon accounts and the
// catalog (logins, password changes, role flips, service edits) as one
// structured line, trace-linked when a span is active.
func Audit(r *http.Request, event string, attrs ...any) {
	base := []any{
		"event", event,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", r.Header.Get("X-Request-Id"),
	}
	if sc := trace.SpanContextFromContext(r.Context()); sc.IsValid() {
		base = append(base, "trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
	}
	slog.InfoContext(r.Context(), "audit", append(base, attrs...)...)
}
