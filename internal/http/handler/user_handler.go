package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glowbook/salon-backend/internal/http/response"
	"github.com/glowbook/salon-backend/internal/observability"
	"github.com/glowbook/salon-backend/internal/repository"
	"github.com/glowbook/salon-backend/internal/service"
)

type UserHandler struct {
	userSvc *service.UserService
}

func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	var body service.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload")
		return
	}

	user, err := h.userSvc.UpdateProfile(uid, body)
	if err != nil {
		observability.RecordUserProfileEvent(r.Context(), "failure")
		switch {
		case errors.Is(err, service.ErrNoProfileUpdates):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		case errors.Is(err, repository.ErrUserNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
		default:
			response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		}
		return
	}

	observability.RecordUserProfileEvent(r.Context(), "success")
	response.JSON(w, r, http.StatusOK, "profile updated", map[string]any{"user": user})
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload")
		return
	}

	if err := h.userSvc.ChangePassword(uid, body.CurrentPassword, body.NewPassword); err != nil {
		observability.RecordUserProfileEvent(r.Context(), "failure")
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, service.ErrInvalidCredentials):
			observability.Audit(r, "user.change_password.failed", "user_id", uid, "reason", "wrong_current_password")
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "current password is incorrect")
		case errors.Is(err, service.ErrSamePassword):
			response.Error(w, r, http.StatusConflict, "CONFLICT", err.Error())
		case errors.Is(err, repository.ErrUserNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to change password")
		}
		return
	}

	observability.Audit(r, "user.change_password.success", "user_id", uid)
	observability.RecordUserProfileEvent(r.Context(), "success")
	response.JSON(w, r, http.StatusOK, "password changed", nil)
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	if err := h.userSvc.Deactivate(uid); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to deactivate account")
		return
	}
	observability.Audit(r, "user.deactivate", "user_id", uid)
	response.JSON(w, r, http.StatusOK, "account deactivated", nil)
}

// Admin endpoints.

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	page, err := h.userSvc.ListPaged(pageReq)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list users")
		return
	}
	response.JSON(w, r, http.StatusOK, "users", paginatedData(page.Items, page.Page, page.PageSize, page.Total, page.TotalPages))
}

func (h *UserHandler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid user id")
		return
	}
	if err := h.userSvc.Activate(targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to activate user")
		return
	}
	adminID, _ := actorID(r.Context())
	observability.Audit(r, "admin.user.activate", "actor_id", adminID, "target_id", targetID)
	response.JSON(w, r, http.StatusOK, "user activated", nil)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid user id")
		return
	}
	adminID, _ := actorID(r.Context())
	if adminID == targetID {
		response.Error(w, r, http.StatusConflict, "CONFLICT", "cannot delete your own account")
		return
	}
	if err := h.userSvc.Delete(targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to delete user")
		return
	}
	observability.Audit(r, "admin.user.delete", "actor_id", adminID, "target_id", targetID)
	response.JSON(w, r, http.StatusOK, "user deleted", nil)
}
