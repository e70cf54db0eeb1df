package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/glowbook/salon-backend/internal/http/response"
	"github.com/glowbook/salon-backend/internal/observability"
	"github.com/glowbook/salon-backend/internal/repository"
	"github.com/glowbook/salon-backend/internal/service"
)

// multipart form memory ceiling for photo uploads
const maxPhotoFormMemory = 10 << 20

type CatalogHandler struct {
	catalogSvc *service.CatalogService
}

func NewCatalogHandler(catalogSvc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

type serviceRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	DurationMin int     `json:"durationMin"`
	Price       float64 `json:"price"`
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload")
		return
	}

	svc, err := h.catalogSvc.Create(r.Context(), service.CreateServiceInput{
		Name:        body.Name,
		Description: body.Description,
		Category:    body.Category,
		DurationMin: body.DurationMin,
		Price:       body.Price,
	})
	if err != nil {
		if isCatalogValidationError(err) {
			response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to create service")
		return
	}

	adminID, _ := actorID(r.Context())
	observability.Audit(r, "catalog.service.create", "actor_id", adminID, "service_id", svc.ID)
	response.JSON(w, r, http.StatusCreated, "service created", map[string]any{"service": svc})
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid service id")
		return
	}
	svc, err := h.catalogSvc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSalonServiceNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "service not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load service")
		return
	}
	response.JSON(w, r, http.StatusOK, "service", map[string]any{"service": svc})
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	// Anonymous and customer callers only see bookable services;
	// admins may opt in to the full catalog.
	activeOnly := true
	if actorIsAdmin(r.Context()) && r.URL.Query().Get("includeInactive") == "true" {
		activeOnly = false
	}

	page, err := h.catalogSvc.ListPaged(r.Context(), pageReq, category, activeOnly)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list services")
		return
	}
	response.JSON(w, r, http.StatusOK, "services", paginatedData(page.Items, page.Page, page.PageSize, page.Total, page.TotalPages))
}

func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid service id")
		return
	}
	var body struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Category    *string  `json:"category"`
		DurationMin *int     `json:"durationMin"`
		Price       *float64 `json:"price"`
		IsActive    *bool    `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload")
		return
	}

	svc, err := h.catalogSvc.Update(r.Context(), id, service.UpdateServiceInput{
		Name:        body.Name,
		Description: body.Description,
		Category:    body.Category,
		DurationMin: body.DurationMin,
		Price:       body.Price,
		IsActive:    body.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSalonServiceNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "service not found")
		case errors.Is(err, service.ErrServiceNoUpdates):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		case isCatalogValidationError(err):
			response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to update service")
		}
		return
	}

	adminID, _ := actorID(r.Context())
	observability.Audit(r, "catalog.service.update", "actor_id", adminID, "service_id", id)
	response.JSON(w, r, http.StatusOK, "service updated", map[string]any{"service": svc})
}

func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid service id")
		return
	}
	if err := h.catalogSvc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrSalonServiceNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "service not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to delete service")
		return
	}
	adminID, _ := actorID(r.Context())
	observability.Audit(r, "catalog.service.delete", "actor_id", adminID, "service_id", id)
	response.JSON(w, r, http.StatusOK, "service deleted", nil)
}

func (h *CatalogHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid service id")
		return
	}
	if err := r.ParseMultipartForm(maxPhotoFormMemory); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "photo file is required")
		return
	}
	defer file.Close()

	svc, err := h.catalogSvc.SetPhoto(r.Context(), id, file, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSalonServiceNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "service not found")
		case errors.Is(err, service.ErrFileTooBig), errors.Is(err, service.ErrInvalidFileType):
			response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to upload photo")
		}
		return
	}

	adminID, _ := actorID(r.Context())
	observability.Audit(r, "catalog.service.photo", "actor_id", adminID, "service_id", id)
	response.JSON(w, r, http.StatusOK, "photo uploaded", map[string]any{"service": svc})
}

type slotRequest struct {
	StaffName string    `json:"staffName"`
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
}

func (h *CatalogHandler) AddSlot(w http.ResponseWriter, r *http.Request) {
	serviceID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid service id")
		return
	}
	var body slotRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload")
		return
	}

	slot, err := h.catalogSvc.AddSlot(r.Context(), serviceID, body.StaffName, body.StartsAt, body.EndsAt)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSalonServiceNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "service not found")
		case errors.Is(err, service.ErrSlotInvalidWindow):
			response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to create slot")
		}
		return
	}

	adminID, _ := actorID(r.Context())
	observability.Audit(r, "catalog.slot.create", "actor_id", adminID, "service_id", serviceID, "slot_id", slot.ID)
	response.JSON(w, r, http.StatusCreated, "slot created", map[string]any{"slot": slot})
}

func (h *CatalogHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	serviceID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid service id")
		return
	}

	from, to, err := parseSlotWindow(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	openOnly := true
	if actorIsAdmin(r.Context()) && r.URL.Query().Get("includeBooked") == "true" {
		openOnly = false
	}

	slots, err := h.catalogSvc.ListSlots(r.Context(), serviceID, from, to, openOnly)
	if err != nil {
		if errors.Is(err, repository.ErrSalonServiceNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "service not found")
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list slots")
		return
	}
	response.JSON(w, r, http.StatusOK, "slots", map[string]any{"slots": slots})
}

// parseSlotWindow reads the optional from/to RFC 3339 query params,
// defaulting to the next seven days.
func parseSlotWindow(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := now
	to := now.AddDate(0, 0, 7)
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		v, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be an RFC 3339 timestamp")
		}
		from = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		v, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be an RFC 3339 timestamp")
		}
		to = v
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.New("to must be after from")
	}
	return from, to, nil
}

func isCatalogValidationError(err error) bool {
	for _, sentinel := range []error{
		service.ErrServiceInvalidName,
		service.ErrServiceInvalidDescription,
		service.ErrServiceInvalidDuration,
		service.ErrServiceInvalidPrice,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
