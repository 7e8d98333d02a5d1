package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "SERVER_PORT", "DB_DRIVER", "JWT_SECRET", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "AUDIT_BUFFER", "PRIORITY_OVERRIDE"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("Load() ServerPort = %v, want 8080", cfg.ServerPort)
	}
	if cfg.Env != "dev" {
		t.Errorf("Load() Env = %v, want dev", cfg.Env)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("Load() DBDriver = %v, want postgres", cfg.DBDriver)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Errorf("Load() AccessTokenTTL = %v, want 1h", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 48*time.Hour {
		t.Errorf("Load() RefreshTokenTTL = %v, want 48h", cfg.RefreshTokenTTL)
	}
	if cfg.AuditBuffer != 100 {
		t.Errorf("Load() AuditBuffer = %v, want 100", cfg.AuditBuffer)
	}
	if cfg.PriorityOverride {
		t.Error("Load() PriorityOverride should default to false")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "PROD")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DATABASE_URL", "user:pass@tcp(localhost:3306)/hospital")
	t.Setenv("JWT_SECRET", "my-secret")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("PUBLIC_BASE_URL", "https://api.example.org/")
	t.Setenv("PRIORITY_OVERRIDE", "true")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("Load() ServerPort = %v, want 9090", cfg.ServerPort)
	}
	if cfg.Env != "prod" {
		t.Errorf("Load() Env = %v, want prod", cfg.Env)
	}
	if cfg.DBDriver != "mysql" {
		t.Errorf("Load() DBDriver = %v, want mysql", cfg.DBDriver)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("Load() AccessTokenTTL = %v, want 15m", cfg.AccessTokenTTL)
	}
	if cfg.PublicBaseURL != "https://api.example.org" {
		t.Errorf("Load() PublicBaseURL = %v, want trailing slash trimmed", cfg.PublicBaseURL)
	}
	if !cfg.PriorityOverride {
		t.Error("Load() PriorityOverride = false, want true")
	}
	if got := cfg.Addr(); got != ":9090" {
		t.Errorf("Addr() = %v, want :9090", got)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:             "prod",
			DBDriver:        "postgres",
			DBUrl:           "postgres://x",
			JWTSecret:       "strong-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 48 * time.Hour,
			AuditBuffer:     100,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"default secret in prod", func(c *Config) { c.JWTSecret = defaultJWTSecret }, true},
		{"default secret in dev", func(c *Config) { c.Env = "dev"; c.JWTSecret = defaultJWTSecret }, false},
		{"unknown driver", func(c *Config) { c.DBDriver = "sqlite" }, true},
		{"missing dsn", func(c *Config) { c.DBUrl = "" }, true},
		{"zero access ttl", func(c *Config) { c.AccessTokenTTL = 0 }, true},
		{"zero audit buffer", func(c *Config) { c.AuditBuffer = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
