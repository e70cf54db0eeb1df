package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/glowbook/salon-backend/internal/http/response"
	"github.com/glowbook/salon-backend/internal/observability"
	"github.com/glowbook/salon-backend/internal/security"
	"github.com/glowbook/salon-backend/internal/service"
)

type AuthHandler struct {
	authSvc *service.AuthService
}

func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "register", status, time.Since(start))
	}()

	var body service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		observability.RecordAuthAttempt(r.Context(), "register", "failure")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload")
		return
	}

	result, err := h.authSvc.Register(body)
	if err != nil {
		status = "failure"
		observability.RecordAuthAttempt(r.Context(), "register", "failure")
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			observability.Audit(r, "auth.register.failed", "reason", "email_taken")
			response.Error(w, r, http.StatusConflict, "CONFLICT", "email already registered")
		case errors.Is(err, service.ErrWeakPassword):
			response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		case isValidationError(err):
			response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "registration failed")
		}
		return
	}

	observability.Audit(r, "auth.register.success", "user_id", result.User.ID)
	observability.RecordAuthAttempt(r.Context(), "register", "success")
	response.JSON(w, r, http.StatusCreated, "registered", result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		observability.RecordAuthAttempt(r.Context(), "login", "failure")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload")
		return
	}

	result, err := h.authSvc.Login(body.Email, body.Password)
	if err != nil {
		status = "failure"
		observability.RecordAuthAttempt(r.Context(), "login", "failure")
		if errors.Is(err, service.ErrInvalidCredentials) {
			observability.Audit(r, "auth.login.failed", "email", strings.ToLower(strings.TrimSpace(body.Email)))
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "login failed")
		return
	}

	observability.Audit(r, "auth.login.success", "user_id", result.User.ID)
	observability.RecordAuthAttempt(r.Context(), "login", "success")
	response.JSON(w, r, http.StatusOK, "logged in", result)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "refresh", status, time.Since(start))
	}()

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		observability.RecordAuthAttempt(r.Context(), "refresh", "failure")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload")
		return
	}

	result, err := h.authSvc.Refresh(body.RefreshToken)
	if err != nil {
		status = "failure"
		observability.RecordAuthAttempt(r.Context(), "refresh", "failure")
		switch {
		case errors.Is(err, service.ErrRefreshTokenRequired):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "refresh token is required")
		case errors.Is(err, security.ErrTokenExpired):
			observability.Audit(r, "auth.refresh.failed", "reason", "expired")
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "refresh token expired")
		case errors.Is(err, security.ErrTokenInvalid), errors.Is(err, service.ErrInvalidCredentials):
			observability.Audit(r, "auth.refresh.failed", "reason", "invalid")
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid refresh token")
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "refresh failed")
		}
		return
	}

	observability.Audit(r, "auth.refresh.success", "user_id", result.User.ID)
	observability.RecordAuthAttempt(r.Context(), "refresh", "success")
	response.JSON(w, r, http.StatusOK, "token refreshed", result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	user, err := h.authSvc.CurrentUser(uid)
	if err != nil {
		// The account can be deleted or deactivated while its token is
		// still valid; identity resolution re-checks and rejects both.
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "identity lookup failed")
		return
	}
	response.JSON(w, r, http.StatusOK, "current user", map[string]any{"user": user})
}

// Logout is a client-side operation with stateless tokens; the server
// acknowledges so clients get a uniform envelope, and the tokens simply
// age out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	observability.Audit(r, "auth.logout", "user_id", uid)
	observability.RecordAuthAttempt(r.Context(), "logout", "success")
	response.JSON(w, r, http.StatusOK, "logged out", nil)
}

func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmailRequired) ||
		errors.Is(err, service.ErrEmailInvalid) ||
		errors.Is(err, service.ErrFirstNameRequired) ||
		errors.Is(err, service.ErrLastNameRequired)
}
