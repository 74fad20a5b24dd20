package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.AppPort != "8080" || cfg.StoreBackend != BackendFile || cfg.StoreKey != "earn_ads_app_data" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AdDuration != 15*time.Second || cfg.SessionTTL != 24*time.Hour || !cfg.OTPEnabled {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.JSONLogs() {
		t.Fatal("expected text logs by default")
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_BACKEND", " Redis ")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ADMIN_TELEGRAM_IDS", "111,222")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("AD_DURATION", "3s")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.StoreBackend != BackendRedis {
		t.Fatalf("backend = %q", cfg.StoreBackend)
	}
	if len(cfg.AdminTelegramIDs) != 2 || cfg.AdminTelegramIDs[1] != 222 {
		t.Fatalf("admin ids = %v", cfg.AdminTelegramIDs)
	}
	if !cfg.JSONLogs() || cfg.AdDuration != 3*time.Second {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"unknown backend", map[string]string{"STORE_BACKEND": "mongo"}},
		{"redis without addr", map[string]string{"STORE_BACKEND": "redis"}},
		{"postgres without url", map[string]string{"STORE_BACKEND": "postgres"}},
		{"bot without token", map[string]string{"ADMIN_BOT_ENABLED": "true"}},
		{"short ad", map[string]string{"AD_DURATION": "500ms"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "s3cret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Parse(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
