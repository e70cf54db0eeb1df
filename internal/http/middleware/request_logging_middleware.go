package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const actorStampKey contextKey = "actor_stamp"

// actorStamp is seeded by the request logger and filled in by the auth
// gate, so the per-request log line can name the account behind a
// booking or admin call even though the gate runs further down the
// middleware chain.
type actorStamp struct {
	userID uint
	role   string
	set    bool
}

// StructuredRequestLogger writes one slog line per request, with the
// authenticated actor attached whenever the auth gate admitted one.
func StructuredRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		stamp := &actorStamp{}
		r = r.WithContext(context.WithValue(r.Context(), actorStampKey, stamp))

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", routePattern(r.Context()),
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"client_ip", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		}
		if stamp.set {
			attrs = append(attrs, "actor_id", stamp.userID, "actor_role", stamp.role)
		}

		switch {
		case status >= http.StatusInternalServerError:
			slog.ErrorContext(r.Context(), "http.request", attrs...)
		case status >= http.StatusBadRequest:
			slog.WarnContext(r.Context(), "http.request", attrs...)
		default:
			slog.InfoContext(r.Context(), "http.request", attrs...)
		}
	})
}

func routePattern(ctx context.Context) string {
	if routeCtx := chi.RouteContext(ctx); routeCtx != nil {
		return routeCtx.RoutePattern()
	}
	return ""
}
