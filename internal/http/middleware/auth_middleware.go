package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/glowbook/salon-backend/internal/http/response"
	"github.com/glowbook/salon-backend/internal/observability"
	"github.com/glowbook/salon-backend/internal/security"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
)

// RequireAuth admits requests with a valid bearer access token and
// stores the parsed claims in the request context. The account record
// is not consulted here; a token stays good until it expires even if
// the account was deactivated after issuance.
func RequireAuth(jwtMgr *security.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing", "header")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token")
				return
			}
			claims, err := jwtMgr.ParseAccessToken(raw)
			if err != nil {
				if errors.Is(err, security.ErrTokenExpired) {
					observability.RecordAccessTokenValidation(r.Context(), "expired", "header")
					response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "access token expired")
					return
				}
				observability.RecordAccessTokenValidation(r.Context(), "invalid", "header")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token")
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "success", "header")
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// RequireRole gates a route on the role carried in the access token.
// It must be mounted inside RequireAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token")
				return
			}
			if claims.Role != role {
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuth attaches claims when a valid token is presented and lets
// the request through anonymously otherwise. A malformed or expired
// token is treated the same as no token.
func OptionalAuth(jwtMgr *security.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := jwtMgr.ParseAccessToken(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}

// withClaims attaches claims for downstream handlers and backfills the
// request logger's actor stamp, which was seeded before the gate ran.
func withClaims(ctx context.Context, claims *security.Claims) context.Context {
	if stamp, ok := ctx.Value(actorStampKey).(*actorStamp); ok {
		stamp.userID = claims.UserID
		stamp.role = claims.Role
		stamp.set = true
	}
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
