package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/hrdesk")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.AuthzMode != AuthzModeEnforce || cfg.StorageTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "hrdesk.yaml")
	content := "addr: \":9090\"\ndatabase_url: postgres://file/hrdesk\nstorage_timeout: 2s\nauthz_mode: shadow\nrate_limit_per_minute: 30\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_ADDR", ":7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("expected env override, got %s", cfg.Addr)
	}
	if cfg.DatabaseURL != "postgres://file/hrdesk" || cfg.AuthzMode != AuthzModeShadow || cfg.RateLimitPerMinute != 30 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.StorageTimeout != 2*time.Second {
		t.Fatalf("expected 2s storage timeout, got %s", cfg.StorageTimeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SEED_TENANT_NAME", "")
	os.Unsetenv("SEED_TENANT_NAME")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SEED_TENANT_NAME=Acme\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SeedTenantName != "Acme" {
		t.Fatalf("expected .env value, got %q", cfg.SeedTenantName)
	}
	os.Unsetenv("SEED_TENANT_NAME")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("addr: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestValidate(t *testing.T) {
	base := Defaults()
	base.DatabaseURL = "postgres://localhost/hrdesk"

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database", func(c *Config) { c.DatabaseURL = "" }},
		{"small body limit", func(c *Config) { c.MaxBodyBytes = 10 }},
		{"zero rate limit", func(c *Config) { c.RateLimitPerMinute = 0 }},
		{"unknown authz mode", func(c *Config) { c.AuthzMode = "sometimes" }},
		{"zero storage timeout", func(c *Config) { c.StorageTimeout = 0 }},
		{"production without secret", func(c *Config) { c.Environment = "production" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateProductionRequiresEnforcedAuthz(t *testing.T) {
	cfg := Defaults()
	cfg.DatabaseURL = "postgres://localhost/hrdesk"
	cfg.Environment = "production"
	cfg.JWTSecret = "prod-secret"
	cfg.DataEncryptionKey = "0123456789abcdef0123456789abcdef"
	cfg.SeedAdminPassword = "Str0ngAdmin!"

	tests := []struct {
		mode    string
		wantErr bool
	}{
		{AuthzModeEnforce, false},
		{AuthzModeShadow, true},
		{AuthzModeDisabled, true},
	}
	for _, tc := range tests {
		t.Run(tc.mode, func(t *testing.T) {
			c := cfg
			c.AuthzMode = tc.mode
			err := c.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected %s to be rejected in production", tc.mode)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}

	dev := cfg
	dev.Environment = "development"
	dev.AuthzMode = AuthzModeShadow
	if err := dev.Validate(); err != nil {
		t.Fatalf("shadow mode should stay available outside production: %v", err)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})
}
