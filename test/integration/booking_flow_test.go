package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/glowbook/salon-backend/internal/config"
	"github.com/glowbook/salon-backend/internal/domain"
)

func TestBookingFlowEndToEnd(t *testing.T) {
	ts := newTestServer(t)

	admin := ts.register(t, "flow-admin@example.com", "Valid#Pass1234")
	ts.promoteAdmin(t, admin.User.ID)
	adminTok := ts.login(t, "flow-admin@example.com", "Valid#Pass1234").Tokens.AccessToken
	customer := ts.register(t, "flow-customer@example.com", "Valid#Pass1234")
	customerTok := customer.Tokens.AccessToken

	// Admin builds the catalog through the API.
	resp, env, raw := ts.doJSON(t, http.MethodPost, "/api/v1/services/", adminTok, map[string]any{
		"name":        "Hot Stone Massage",
		"description": "60 minute full body massage",
		"category":    "spa",
		"durationMin": 60,
		"price":       80,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create service: status=%d body=%s", resp.StatusCode, raw)
	}
	var svcPayload struct {
		Service domain.SalonService `json:"service"`
	}
	if err := json.Unmarshal(env.Data, &svcPayload); err != nil {
		t.Fatalf("decode service payload: %v", err)
	}

	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	resp, env, raw = ts.doJSON(t, http.MethodPost, fmt.Sprintf("/api/v1/services/%d/slots", svcPayload.Service.ID), adminTok, map[string]any{
		"staffName": "Mori",
		"startsAt":  start.Format(time.RFC3339),
		"endsAt":    start.Add(time.Hour).Format(time.RFC3339),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create slot: status=%d body=%s", resp.StatusCode, raw)
	}
	var slotPayload struct {
		Slot domain.Slot `json:"slot"`
	}
	if err := json.Unmarshal(env.Data, &slotPayload); err != nil {
		t.Fatalf("decode slot payload: %v", err)
	}

	// Customer books the slot.
	resp, env, raw = ts.doJSON(t, http.MethodPost, "/api/v1/bookings/", customerTok, map[string]any{
		"slotId": slotPayload.Slot.ID,
		"notes":  "anniversary gift",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create booking: status=%d body=%s", resp.StatusCode, raw)
	}
	var bookingPayload struct {
		Booking domain.Booking `json:"booking"`
	}
	if err := json.Unmarshal(env.Data, &bookingPayload); err != nil {
		t.Fatalf("decode booking payload: %v", err)
	}
	if bookingPayload.Booking.Status != domain.BookingStatusConfirmed {
		t.Fatalf("expected confirmed booking, got %s", bookingPayload.Booking.Status)
	}

	// The booked slot disappears from public availability.
	from := start.Add(-time.Hour).Format(time.RFC3339)
	to := start.Add(2 * time.Hour).Format(time.RFC3339)
	resp, env, raw = ts.doJSON(t, http.MethodGet,
		fmt.Sprintf("/api/v1/services/%d/slots?from=%s&to=%s", svcPayload.Service.ID, from, to), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list slots: status=%d body=%s", resp.StatusCode, raw)
	}
	var slotsPayload struct {
		Slots []domain.Slot `json:"slots"`
	}
	if err := json.Unmarshal(env.Data, &slotsPayload); err != nil {
		t.Fatalf("decode slots payload: %v", err)
	}
	if len(slotsPayload.Slots) != 0 {
		t.Fatalf("booked slot still listed as open: %+v", slotsPayload.Slots)
	}

	// A second customer racing for the same slot gets a conflict.
	rival := ts.register(t, "flow-rival@example.com", "Valid#Pass1234")
	resp, _, _ = ts.doJSON(t, http.MethodPost, "/api/v1/bookings/", rival.Tokens.AccessToken, map[string]any{
		"slotId": slotPayload.Slot.ID,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for taken slot, got %d", resp.StatusCode)
	}

	// Payment intent was recorded at the service price.
	resp, env, raw = ts.doJSON(t, http.MethodGet,
		fmt.Sprintf("/api/v1/bookings/%d/payment", bookingPayload.Booking.ID), customerTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("payment lookup: status=%d body=%s", resp.StatusCode, raw)
	}
	var paymentPayload struct {
		Payment domain.Payment `json:"payment"`
	}
	if err := json.Unmarshal(env.Data, &paymentPayload); err != nil {
		t.Fatalf("decode payment payload: %v", err)
	}
	if paymentPayload.Payment.Amount != 80 || paymentPayload.Payment.Status != domain.PaymentStatusPending {
		t.Fatalf("unexpected payment: %+v", paymentPayload.Payment)
	}

	// Cancel frees the slot for the rival.
	resp, _, raw = ts.doJSON(t, http.MethodPost,
		fmt.Sprintf("/api/v1/bookings/%d/cancel", bookingPayload.Booking.ID), customerTok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel booking: status=%d body=%s", resp.StatusCode, raw)
	}
	resp, _, raw = ts.doJSON(t, http.MethodPost, "/api/v1/bookings/", rival.Tokens.AccessToken, map[string]any{
		"slotId": slotPayload.Slot.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("rebook after cancel: status=%d body=%s", resp.StatusCode, raw)
	}
}

func TestAuthRateLimitOnLogin(t *testing.T) {
	// Registration shares the auth limiter, so budget one extra request.
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.AuthRateLimitPerMin = 3
	})
	ts.register(t, "limited@example.com", "Valid#Pass1234")

	body := map[string]string{"email": "limited@example.com", "password": "WrongPass1"}
	for i := 0; i < 2; i++ {
		resp, _, _ := ts.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", body)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, resp.StatusCode)
		}
	}
	resp, env, _ := ts.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", body)
	if resp.StatusCode != http.StatusTooManyRequests || env.Code != "RATE_LIMITED" {
		t.Fatalf("expected 429 RATE_LIMITED, got %d %q", resp.StatusCode, env.Code)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}
