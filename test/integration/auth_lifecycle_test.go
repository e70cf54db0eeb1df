package integration

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/glowbook/salon-backend/internal/domain"
)

func TestAuthLifecycleRegisterLoginMe(t *testing.T) {
	ts := newTestServer(t)

	const email = "lifecycle@example.com"
	const password = "Valid#Pass1234"

	reg := ts.register(t, email, password)
	if reg.User.Role != domain.RoleCustomer || !reg.User.IsActive {
		t.Fatalf("unexpected registered user: %+v", reg.User)
	}

	login := ts.login(t, email, password)
	resp, env, raw := ts.doJSON(t, http.MethodGet, "/api/v1/auth/me", login.Tokens.AccessToken, nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("me failed: status=%d body=%s", resp.StatusCode, raw)
	}
	var mePayload struct {
		User domain.User `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &mePayload); err != nil {
		t.Fatalf("decode me payload: %v", err)
	}
	if mePayload.User.Email != email {
		t.Fatalf("me returned wrong user: %+v", mePayload.User)
	}
	if strings.Contains(raw, password) || strings.Contains(raw, "passwordHash") {
		t.Fatalf("credential material leaked: %s", raw)
	}
}

func TestAuthLoginFailuresAreUniform(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "uniform@example.com", "Valid#Pass1234")

	deactivated := ts.register(t, "inactive@example.com", "Valid#Pass1234")
	tok := ts.login(t, "inactive@example.com", "Valid#Pass1234").Tokens.AccessToken
	if resp, _, _ := ts.doJSON(t, http.MethodDelete, "/api/v1/users/deactivate", tok, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("deactivate failed for user %d", deactivated.User.ID)
	}

	cases := []map[string]string{
		{"email": "uniform@example.com", "password": "WrongPass1"},
		{"email": "nobody@example.com", "password": "Valid#Pass1234"},
		{"email": "inactive@example.com", "password": "Valid#Pass1234"},
	}
	var bodies []string
	for _, c := range cases {
		resp, env, raw := ts.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", c)
		if resp.StatusCode != http.StatusUnauthorized || env.Success {
			t.Fatalf("login %v: expected uniform 401, got %d body=%s", c["email"], resp.StatusCode, raw)
		}
		bodies = append(bodies, raw)
	}
	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Fatalf("login failure bodies differ, account existence leaks: %q vs %q", bodies[0], bodies[i])
		}
	}
}

func TestAuthRefreshReflectsCurrentRole(t *testing.T) {
	ts := newTestServer(t)
	reg := ts.register(t, "promoted@example.com", "Valid#Pass1234")

	// Admin routes reject the customer-role token issued at registration.
	resp, _, _ := ts.doJSON(t, http.MethodGet, "/api/v1/users/", reg.Tokens.AccessToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 before promotion, got %d", resp.StatusCode)
	}

	ts.promoteAdmin(t, reg.User.ID)

	// The old access token still carries the customer role; a refresh
	// re-reads the account and mints admin claims.
	resp, _, _ = ts.doJSON(t, http.MethodGet, "/api/v1/users/", reg.Tokens.AccessToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected stale token to stay customer, got %d", resp.StatusCode)
	}

	resp, env, raw := ts.doJSON(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refreshToken": reg.Tokens.RefreshToken,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh failed: status=%d body=%s", resp.StatusCode, raw)
	}
	var refreshed authPayload
	if err := json.Unmarshal(env.Data, &refreshed); err != nil {
		t.Fatalf("decode refresh payload: %v", err)
	}
	resp, _, raw = ts.doJSON(t, http.MethodGet, "/api/v1/users/", refreshed.Tokens.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refreshed token should carry admin role: status=%d body=%s", resp.StatusCode, raw)
	}
}

func TestAuthDeactivationSemantics(t *testing.T) {
	ts := newTestServer(t)
	reg := ts.register(t, "departing@example.com", "Valid#Pass1234")

	if resp, _, _ := ts.doJSON(t, http.MethodDelete, "/api/v1/users/deactivate", reg.Tokens.AccessToken, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("deactivate failed: %d", resp.StatusCode)
	}

	// Refresh is refused once the account is inactive.
	resp, _, _ := ts.doJSON(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refreshToken": reg.Tokens.RefreshToken,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected refresh to fail for deactivated account, got %d", resp.StatusCode)
	}

	// The gate validates signature and expiry only, so an access token
	// issued before deactivation still reaches gate-only endpoints
	// until it ages out.
	resp, _, _ = ts.doJSON(t, http.MethodGet, "/api/v1/bookings/", reg.Tokens.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pre-deactivation access token should pass the gate, got %d", resp.StatusCode)
	}

	// Identity resolution re-checks the active flag, so the same token
	// is refused where the account itself is consulted.
	resp, env, _ := ts.doJSON(t, http.MethodGet, "/api/v1/auth/me", reg.Tokens.AccessToken, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 from /auth/me for deactivated account, got %d", resp.StatusCode)
	}
	if env.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED code, got %q", env.Code)
	}
}

func TestAuthExpiredTokenRejected(t *testing.T) {
	ts := newTestServer(t)
	reg := ts.register(t, "expired@example.com", "Valid#Pass1234")

	expired, err := ts.jwtMgr.SignAccessToken(reg.User.ID, reg.User.Email, reg.User.Role, -time.Minute)
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}
	resp, env, _ := ts.doJSON(t, http.MethodGet, "/api/v1/auth/me", expired, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", resp.StatusCode)
	}
	if !strings.Contains(env.Message, "expired") {
		t.Fatalf("expected expiry-specific message, got %q", env.Message)
	}
}

func TestRoleGateOnAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	customer := ts.register(t, "gate-customer@example.com", "Valid#Pass1234")
	admin := ts.register(t, "gate-admin@example.com", "Valid#Pass1234")
	ts.promoteAdmin(t, admin.User.ID)
	adminTokens := ts.login(t, "gate-admin@example.com", "Valid#Pass1234").Tokens

	resp, env, _ := ts.doJSON(t, http.MethodGet, "/api/v1/users/", customer.Tokens.AccessToken, nil)
	if resp.StatusCode != http.StatusForbidden || env.Code != "FORBIDDEN" {
		t.Fatalf("expected 403 FORBIDDEN for customer, got %d %q", resp.StatusCode, env.Code)
	}
	resp, _, raw := ts.doJSON(t, http.MethodGet, "/api/v1/users/", adminTokens.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d body=%s", resp.StatusCode, raw)
	}
}
