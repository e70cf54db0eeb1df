package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/glowbook/salon-backend/internal/config"
	"github.com/glowbook/salon-backend/internal/database"
	"github.com/glowbook/salon-backend/internal/domain"
	"github.com/glowbook/salon-backend/internal/http/middleware"
	"github.com/glowbook/salon-backend/internal/repository"
	"github.com/glowbook/salon-backend/internal/security"
	"github.com/glowbook/salon-backend/internal/service"
)

// memoryStorage keeps uploaded photo bytes in a map so catalog tests can
// run without a live MinIO.
type memoryStorage struct {
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (s *memoryStorage) UploadServicePhoto(_ context.Context, serviceID uint, file io.Reader, fileSize int64) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("service-photos/service-%d/test-object", serviceID)
	s.objects[key] = data
	return key, nil
}

func (s *memoryStorage) DeleteServicePhoto(_ context.Context, objectKey string) error {
	delete(s.objects, objectKey)
	return nil
}

func (s *memoryStorage) GeneratePhotoURL(_ context.Context, objectKey string) (string, error) {
	return "https://storage.test/" + objectKey, nil
}

type handlerFixture struct {
	router   chi.Router
	db       *gorm.DB
	jwtMgr   *security.JWTManager
	tokenSvc *service.TokenService
	users    repository.UserRepository
	slots    repository.SlotRepository
	services repository.SalonServiceRepository
}

// newHandlerFixture wires the full handler stack over an in-memory
// sqlite database with the same routing shape the API server uses.
func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	jwtMgr := security.NewJWTManager(
		"glowbook-test", "glowbook-api",
		strings.Repeat("a", 32), strings.Repeat("r", 32),
	)
	tokenSvc := service.NewTokenService(jwtMgr, 15*time.Minute, 24*time.Hour)

	userRepo := repository.NewUserRepository(db)
	serviceRepo := repository.NewSalonServiceRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	authSvc := service.NewAuthService(&config.Config{}, tokenSvc, userRepo)
	userSvc := service.NewUserService(userRepo)
	catalogSvc := service.NewCatalogService(serviceRepo, slotRepo, newMemoryStorage())
	bookingSvc := service.NewBookingService(bookingRepo, slotRepo, serviceRepo, paymentRepo)

	authHandler := NewAuthHandler(authSvc)
	userHandler := NewUserHandler(userSvc)
	catalogHandler := NewCatalogHandler(catalogSvc)
	bookingHandler := NewBookingHandler(bookingSvc)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh-token", authHandler.Refresh)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(jwtMgr))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})
		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtMgr))
			r.Put("/profile", userHandler.UpdateProfile)
			r.Put("/change-password", userHandler.ChangePassword)
			r.Delete("/deactivate", userHandler.Deactivate)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Get("/", userHandler.ListUsers)
				r.Put("/{id}/activate", userHandler.ActivateUser)
				r.Delete("/{id}", userHandler.DeleteUser)
			})
		})
		r.Route("/services", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.OptionalAuth(jwtMgr))
				r.Get("/", catalogHandler.List)
				r.Get("/{id}", catalogHandler.Get)
				r.Get("/{id}/slots", catalogHandler.ListSlots)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(jwtMgr))
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Post("/", catalogHandler.Create)
				r.Put("/{id}", catalogHandler.Update)
				r.Delete("/{id}", catalogHandler.Delete)
				r.Post("/{id}/photo", catalogHandler.UploadPhoto)
				r.Post("/{id}/slots", catalogHandler.AddSlot)
			})
		})
		r.Route("/bookings", func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtMgr))
			r.Post("/", bookingHandler.Create)
			r.Get("/", bookingHandler.List)
			r.Get("/{id}", bookingHandler.Get)
			r.Post("/{id}/cancel", bookingHandler.Cancel)
			r.Get("/{id}/payment", bookingHandler.Payment)
		})
	})

	return &handlerFixture{
		router:   r,
		db:       db,
		jwtMgr:   jwtMgr,
		tokenSvc: tokenSvc,
		users:    userRepo,
		slots:    slotRepo,
		services: serviceRepo,
	}
}

func (fx *handlerFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	fx.router.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal response %q: %v", rr.Body.String(), err)
	}
	return env
}

func envelopeData(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	env := decodeEnvelope(t, rr)
	data, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in %q", rr.Body.String())
	}
	return data
}

// registerUser creates an account through the public endpoint and returns
// the issued access token and user id.
func (fx *handlerFixture) registerUser(t *testing.T, email string) (string, uint) {
	t.Helper()
	rr := fx.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":     email,
		"password":  "Str0ngPass",
		"firstName": "Test",
		"lastName":  "User",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d body=%s", email, rr.Code, rr.Body.String())
	}
	data := envelopeData(t, rr)
	tokens := data["tokens"].(map[string]any)
	user := data["user"].(map[string]any)
	return tokens["accessToken"].(string), uint(user["id"].(float64))
}

// adminToken promotes a fresh user to admin and signs a token that
// carries the admin role.
func (fx *handlerFixture) adminToken(t *testing.T, email string) (string, uint) {
	t.Helper()
	_, uid := fx.registerUser(t, email)
	if err := fx.users.UpdateFields(uid, map[string]any{"role": domain.RoleAdmin}); err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	tok, err := fx.jwtMgr.SignAccessToken(uid, email, domain.RoleAdmin, time.Hour)
	if err != nil {
		t.Fatalf("sign admin token: %v", err)
	}
	return tok, uid
}

// seedService inserts a bookable service directly through the repository.
func (fx *handlerFixture) seedService(t *testing.T, name string, active bool) uint {
	t.Helper()
	svc := &domain.SalonService{
		Name:        name,
		Category:    "hair",
		DurationMin: 45,
		Price:       40,
		IsActive:    active,
	}
	if err := fx.services.Create(svc); err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return svc.ID
}

// seedSlot inserts an open slot starting at the given offset from now.
func (fx *handlerFixture) seedSlot(t *testing.T, serviceID uint, startsIn time.Duration) uint {
	t.Helper()
	start := time.Now().Add(startsIn)
	slot := &domain.Slot{
		ServiceID: serviceID,
		StaffName: "Dana",
		StartsAt:  start,
		EndsAt:    start.Add(45 * time.Minute),
		Status:    domain.SlotStatusOpen,
	}
	if err := fx.slots.Create(slot); err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	return slot.ID
}
