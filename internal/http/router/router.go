package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/glowbook/salon-backend/internal/domain"
	"github.com/glowbook/salon-backend/internal/health"
	"github.com/glowbook/salon-backend/internal/http/handler"
	"github.com/glowbook/salon-backend/internal/http/middleware"
	"github.com/glowbook/salon-backend/internal/http/response"
	"github.com/glowbook/salon-backend/internal/security"
)

// photo uploads carry image bytes and need more than the global 1MB cap
const photoBodyLimit = 6 << 20

type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	CatalogHandler    *handler.CatalogHandler
	BookingHandler    *handler.BookingHandler
	JWTManager        *security.JWTManager
	CORSOrigins       []string
	AuthRateLimitRPM  int
	APIRateLimitRPM   int
	GlobalRateLimiter GlobalRateLimiterFunc
	AuthRateLimiter   AuthRateLimiterFunc
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
}

type GlobalRateLimiterFunc func(http.Handler) http.Handler
type AuthRateLimiterFunc func(http.Handler) http.Handler

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))
	if dep.GlobalRateLimiter != nil {
		r.Use(dep.GlobalRateLimiter)
	} else {
		r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())
	}

	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute).Middleware()
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, "alive", map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, "ready", map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, "ready", map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
			r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
			r.With(authLimiter).Post("/refresh-token", dep.AuthHandler.Refresh)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(dep.JWTManager))
				r.Get("/me", dep.AuthHandler.Me)
				r.Post("/logout", dep.AuthHandler.Logout)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAuth(dep.JWTManager))
			r.Put("/profile", dep.UserHandler.UpdateProfile)
			r.With(authLimiter).Put("/change-password", dep.UserHandler.ChangePassword)
			r.Delete("/deactivate", dep.UserHandler.Deactivate)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Get("/", dep.UserHandler.ListUsers)
				r.Put("/{id}/activate", dep.UserHandler.ActivateUser)
				r.Delete("/{id}", dep.UserHandler.DeleteUser)
			})
		})

		r.Route("/services", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.OptionalAuth(dep.JWTManager))
				r.Get("/", dep.CatalogHandler.List)
				r.Get("/{id}", dep.CatalogHandler.Get)
				r.Get("/{id}/slots", dep.CatalogHandler.ListSlots)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(dep.JWTManager))
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Post("/", dep.CatalogHandler.Create)
				r.Put("/{id}", dep.CatalogHandler.Update)
				r.Delete("/{id}", dep.CatalogHandler.Delete)
				r.With(middleware.BodyLimit(photoBodyLimit)).Post("/{id}/photo", dep.CatalogHandler.UploadPhoto)
				r.Post("/{id}/slots", dep.CatalogHandler.AddSlot)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(middleware.RequireAuth(dep.JWTManager))
			r.Post("/", dep.BookingHandler.Create)
			r.Get("/", dep.BookingHandler.List)
			r.Get("/{id}", dep.BookingHandler.Get)
			r.Post("/{id}/cancel", dep.BookingHandler.Cancel)
			r.Get("/{id}/payment", dep.BookingHandler.Payment)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
