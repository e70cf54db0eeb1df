package config

import (
	"strings"
	"testing"
	"time"
)

func validConfigForTest() *Config {
	return &Config{
		Env:                       "test",
		HTTPPort:                  "8080",
		DatabaseURL:               "postgres://localhost:5432/salon",
		JWTIssuer:                 "salon-backend",
		JWTAudience:               "salon-backend-api",
		JWTAccessSecret:           strings.Repeat("a", 32),
		JWTRefreshSecret:          strings.Repeat("b", 32),
		JWTAccessTTL:              15 * time.Minute,
		JWTRefreshTTL:             168 * time.Hour,
		AuthRateLimitPerMin:       30,
		APIRateLimitPerMin:        120,
		RateLimitRedisPrefix:      "glowbook:rl",
		RedisAddr:                 "localhost:6379",
		OTELExporterOTLPEndpoint:  "localhost:4317",
		OTELTraceSamplingRatio:    1.0,
		OTELMetricsExportInterval: 10 * time.Second,
		OTELLogLevel:              "info",
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := validConfigForTest()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsMissingDatabaseURL(t *testing.T) {
	cfg := validConfigForTest()
	cfg.DatabaseURL = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestValidateRejectsSharedJWTSecrets(t *testing.T) {
	cfg := validConfigForTest()
	cfg.JWTRefreshSecret = cfg.JWTAccessSecret
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected distinct-secret error, got %v", err)
	}
}

func TestValidateRejectsShortSecrets(t *testing.T) {
	cfg := validConfigForTest()
	cfg.JWTAccessSecret = "short"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_SECRET") {
		t.Fatalf("expected short-secret error, got %v", err)
	}
}

func TestValidateJWTTTLBounds(t *testing.T) {
	cfg := validConfigForTest()
	cfg.JWTAccessTTL = 2 * time.Hour
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected access TTL bound error")
	}
	cfg = validConfigForTest()
	cfg.JWTRefreshTTL = 60 * 24 * time.Hour
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected refresh TTL bound error")
	}
}

func TestValidateStorageRequiresCredentials(t *testing.T) {
	cfg := validConfigForTest()
	cfg.StorageEnabled = true
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "STORAGE_ACCESS_KEY") {
		t.Fatalf("expected storage credential error, got %v", err)
	}
	cfg.StorageAccessKey = "minio"
	cfg.StorageSecretKey = "minio123"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid storage config, got %v", err)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/salon")
	t.Setenv("JWT_ACCESS_SECRET", strings.Repeat("a", 32))
	t.Setenv("JWT_REFRESH_SECRET", strings.Repeat("b", 32))
	t.Setenv("JWT_ACCESS_TTL", "10m")
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", " Owner@Example.COM ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTAccessTTL != 10*time.Minute {
		t.Fatalf("unexpected access TTL: %v", cfg.JWTAccessTTL)
	}
	if cfg.BootstrapAdminEmail != "owner@example.com" {
		t.Fatalf("expected normalized bootstrap email, got %q", cfg.BootstrapAdminEmail)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected port default: %s", cfg.HTTPPort)
	}
}
