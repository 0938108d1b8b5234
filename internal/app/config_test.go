package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CRM_JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected default http addr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected default metrics addr :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.MongoURI != "" {
		t.Errorf("expected empty mongo URI by default, got %s", cfg.MongoURI)
	}
	if cfg.MongoDatabase != "crm" {
		t.Errorf("expected default database crm, got %s", cfg.MongoDatabase)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected default token TTL 24h, got %s", cfg.TokenTTL)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected default shutdown timeout 5s, got %s", cfg.ShutdownTimeout)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CRM_JWT_SECRET", "test-secret")
	t.Setenv("CRM_HTTP_ADDR", ":8181")
	t.Setenv("CRM_MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("CRM_MONGO_DB", "crm_test")
	t.Setenv("CRM_TOKEN_TTL", "1h")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTPAddr != ":8181" {
		t.Errorf("expected http addr :8181, got %s", cfg.HTTPAddr)
	}
	if cfg.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("unexpected mongo URI %s", cfg.MongoURI)
	}
	if cfg.MongoDatabase != "crm_test" {
		t.Errorf("unexpected database %s", cfg.MongoDatabase)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("expected token TTL 1h, got %s", cfg.TokenTTL)
	}
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("CRM_JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error when CRM_JWT_SECRET is missing")
	}
}

func TestLoadConfigRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("CRM_JWT_SECRET", "test-secret")
	t.Setenv("CRM_TOKEN_TTL", "-1h")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error for non-positive token TTL")
	}
}
