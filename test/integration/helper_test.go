package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/glowbook/salon-backend/internal/config"
	"github.com/glowbook/salon-backend/internal/database"
	"github.com/glowbook/salon-backend/internal/domain"
	"github.com/glowbook/salon-backend/internal/http/handler"
	"github.com/glowbook/salon-backend/internal/http/router"
	"github.com/glowbook/salon-backend/internal/repository"
	"github.com/glowbook/salon-backend/internal/security"
	"github.com/glowbook/salon-backend/internal/service"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	baseURL  string
	client   *http.Client
	jwtMgr   *security.JWTManager
	users    repository.UserRepository
	slots    repository.SlotRepository
	services repository.SalonServiceRepository
	close    func()
}

// newTestServer stands up the real router over an in-memory sqlite
// database, with local rate limiters generous enough to stay out of the
// way unless a test asks otherwise.
func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Env:                 "test",
		JWTIssuer:           "glowbook-test",
		JWTAudience:         "glowbook-api",
		JWTAccessSecret:     strings.Repeat("a", 32),
		JWTRefreshSecret:    strings.Repeat("r", 32),
		JWTAccessTTL:        15 * time.Minute,
		JWTRefreshTTL:       24 * time.Hour,
		CORSAllowedOrigins:  []string{"http://localhost:3000"},
		AuthRateLimitPerMin: 1000,
		APIRateLimitPerMin:  10000,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	jwtMgr := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	tokenSvc := service.NewTokenService(jwtMgr, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	userRepo := repository.NewUserRepository(db)
	serviceRepo := repository.NewSalonServiceRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	authSvc := service.NewAuthService(cfg, tokenSvc, userRepo)
	userSvc := service.NewUserService(userRepo)
	catalogSvc := service.NewCatalogService(serviceRepo, slotRepo, nil)
	bookingSvc := service.NewBookingService(bookingRepo, slotRepo, serviceRepo, paymentRepo)

	h := router.NewRouter(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc),
		UserHandler:      handler.NewUserHandler(userSvc),
		CatalogHandler:   handler.NewCatalogHandler(catalogSvc),
		BookingHandler:   handler.NewBookingHandler(bookingSvc),
		JWTManager:       jwtMgr,
		CORSOrigins:      cfg.CORSAllowedOrigins,
		AuthRateLimitRPM: cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:  cfg.APIRateLimitPerMin,
	})

	srv := httptest.NewServer(h)
	ts := &testServer{
		baseURL:  srv.URL,
		client:   srv.Client(),
		jwtMgr:   jwtMgr,
		users:    userRepo,
		slots:    slotRepo,
		services: serviceRepo,
		close: func() {
			srv.Close()
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}
	t.Cleanup(ts.close)
	return ts
}

func (ts *testServer) doJSON(t *testing.T, method, path, token string, body any) (*http.Response, apiEnvelope, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.baseURL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env apiEnvelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("unmarshal %q: %v", string(raw), err)
		}
	}
	return resp, env, string(raw)
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type authPayload struct {
	User   domain.User `json:"user"`
	Tokens tokenPair   `json:"tokens"`
}

func (ts *testServer) register(t *testing.T, email, password string) authPayload {
	t.Helper()
	resp, env, raw := ts.doJSON(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":     email,
		"password":  password,
		"firstName": "Iris",
		"lastName":  "Vega",
	})
	if resp.StatusCode != http.StatusCreated || !env.Success {
		t.Fatalf("register failed: status=%d body=%s", resp.StatusCode, raw)
	}
	var payload authPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode register payload: %v", err)
	}
	return payload
}

func (ts *testServer) login(t *testing.T, email, password string) authPayload {
	t.Helper()
	resp, env, raw := ts.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("login failed: status=%d body=%s", resp.StatusCode, raw)
	}
	var payload authPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode login payload: %v", err)
	}
	return payload
}

func (ts *testServer) promoteAdmin(t *testing.T, userID uint) {
	t.Helper()
	if err := ts.users.UpdateFields(userID, map[string]any{"role": domain.RoleAdmin}); err != nil {
		t.Fatalf("promote admin: %v", err)
	}
}

func (ts *testServer) seedService(t *testing.T, name string, active bool) uint {
	t.Helper()
	svc := &domain.SalonService{Name: name, Category: "hair", DurationMin: 45, Price: 40, IsActive: active}
	if err := ts.services.Create(svc); err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return svc.ID
}

func (ts *testServer) seedSlot(t *testing.T, serviceID uint, startsIn time.Duration) uint {
	t.Helper()
	start := time.Now().Add(startsIn)
	slot := &domain.Slot{
		ServiceID: serviceID,
		StaffName: "Mori",
		StartsAt:  start,
		EndsAt:    start.Add(45 * time.Minute),
		Status:    domain.SlotStatusOpen,
	}
	if err := ts.slots.Create(slot); err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	return slot.ID
}
