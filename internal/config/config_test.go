package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.SQLitePath != "./data/payouts.db" {
		t.Errorf("unexpected sqlite path %q", cfg.SQLitePath)
	}
	if cfg.SettleTimeout != 10*time.Second || cfg.LockTimeout != 5*time.Second {
		t.Errorf("unexpected timeouts: settle=%v lock=%v", cfg.SettleTimeout, cfg.LockTimeout)
	}
	if cfg.MaxSettlementBatch != 500 {
		t.Errorf("expected batch limit 500, got %d", cfg.MaxSettlementBatch)
	}
	if cfg.EventsExchange != "payouts" || cfg.RabbitMQURL != "" {
		t.Errorf("unexpected events config: %q %q", cfg.EventsExchange, cfg.RabbitMQURL)
	}
	if len(cfg.CORSAllowedOrigins) != 4 {
		t.Errorf("expected 4 default origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("PORT", "9090")
	t.Setenv("SETTLE_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" || cfg.SettleTimeout != 3*time.Second {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "https://admin.example.com" {
		t.Errorf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "mysql"}},
		{"zero batch", map[string]string{"DATABASE_DRIVER": "sqlite", "MAX_SETTLEMENT_BATCH": "0"}},
		{"zero settle timeout", map[string]string{"DATABASE_DRIVER": "sqlite", "SETTLE_TIMEOUT": "0s"}},
		{"bad duration", map[string]string{"DATABASE_DRIVER": "sqlite", "LOCK_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
