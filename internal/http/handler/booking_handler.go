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

type BookingHandler struct {
	bookingSvc *service.BookingService
}

func NewBookingHandler(bookingSvc *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	var body struct {
		SlotID uint   `json:"slotId"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload")
		return
	}
	if body.SlotID == 0 {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "slotId is required")
		return
	}

	booking, err := h.bookingSvc.Create(r.Context(), uid, body.SlotID, body.Notes)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "slot not found")
		case errors.Is(err, repository.ErrSlotTaken):
			response.Error(w, r, http.StatusConflict, "CONFLICT", "slot is no longer available")
		case errors.Is(err, service.ErrSlotInPast):
			response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, service.ErrServiceUnavailable):
			response.Error(w, r, http.StatusConflict, "CONFLICT", err.Error())
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to create booking")
		}
		return
	}

	observability.Audit(r, "booking.create", "user_id", uid, "booking_id", booking.ID, "slot_id", body.SlotID)
	response.JSON(w, r, http.StatusCreated, "booking confirmed", map[string]any{"booking": booking})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	page, err := h.bookingSvc.ListForUser(r.Context(), uid, pageReq)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list bookings")
		return
	}
	response.JSON(w, r, http.StatusOK, "bookings", paginatedData(page.Items, page.Page, page.PageSize, page.Total, page.TotalPages))
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	bookingID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid booking id")
		return
	}

	booking, err := h.bookingSvc.GetByID(r.Context(), uid, actorIsAdmin(r.Context()), bookingID)
	if err != nil {
		h.writeLookupError(w, r, err, "failed to load booking")
		return
	}
	response.JSON(w, r, http.StatusOK, "booking", map[string]any{"booking": booking})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	bookingID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid booking id")
		return
	}

	booking, err := h.bookingSvc.Cancel(r.Context(), uid, actorIsAdmin(r.Context()), bookingID)
	if err != nil {
		if errors.Is(err, service.ErrBookingNotCancelable) {
			response.Error(w, r, http.StatusConflict, "CONFLICT", err.Error())
			return
		}
		h.writeLookupError(w, r, err, "failed to cancel booking")
		return
	}

	observability.Audit(r, "booking.cancel", "user_id", uid, "booking_id", bookingID)
	response.JSON(w, r, http.StatusOK, "booking cancelled", map[string]any{"booking": booking})
}

func (h *BookingHandler) Payment(w http.ResponseWriter, r *http.Request) {
	uid, err := actorID(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context")
		return
	}
	bookingID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid booking id")
		return
	}

	payment, err := h.bookingSvc.PaymentForBooking(r.Context(), uid, actorIsAdmin(r.Context()), bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "payment not found")
			return
		}
		h.writeLookupError(w, r, err, "failed to load payment")
		return
	}
	response.JSON(w, r, http.StatusOK, "payment", map[string]any{"payment": payment})
}

func (h *BookingHandler) writeLookupError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "booking not found")
	case errors.Is(err, service.ErrBookingForbidden):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "booking belongs to another user")
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", fallback)
	}
}
