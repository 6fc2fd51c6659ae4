package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `
app:
  name: leaguedesk
  port: 8080
database:
  driver: sqlite
  filename: data/test.db
auth:
  token_ttl: 12h
scheduler:
  enabled: true
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.App.Environment != EnvironmentDevelopment {
		t.Errorf("environment = %q, want development", cfg.App.Environment)
	}
	if cfg.App.DefaultRegion != "US" {
		t.Errorf("default region = %q, want US", cfg.App.DefaultRegion)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("token ttl = %s, want 12h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.Issuer != "leaguedesk" {
		t.Errorf("issuer = %q, want app name", cfg.Auth.Issuer)
	}
	if cfg.RateLimit.LoginMaxAttempts != 5 || cfg.RateLimit.LoginLockout != 15*time.Minute {
		t.Errorf("unexpected ratelimit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Scheduler.OverdueFixtureCron != "0 * * * *" || cfg.Scheduler.OverdueGrace != 3*time.Hour {
		t.Errorf("unexpected scheduler defaults: %+v", cfg.Scheduler)
	}
	if cfg.IsProduction() {
		t.Error("development config reported as production")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.App.SecretKey = "" }, "APP_SECRET_KEY"},
		{"missing port", func(c *Config) { c.App.Port = 0 }, "port"},
		{"unsupported driver", func(c *Config) { c.Database.Driver = "postgres" }, "unsupported database driver"},
		{"missing filename", func(c *Config) { c.Database.Filename = "" }, "filename"},
		{"ttl too short", func(c *Config) { c.Auth.TokenTTL = 30 * time.Minute }, "token_ttl"},
		{"ttl too long", func(c *Config) { c.Auth.TokenTTL = 72 * time.Hour }, "token_ttl"},
		{"bad cron", func(c *Config) { c.Scheduler.OverdueFixtureCron = "every hour" }, "overdue_fixture_cron"},
		{"bad cron ignored when disabled", func(c *Config) {
			c.Scheduler.Enabled = false
			c.Scheduler.OverdueFixtureCron = "every hour"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(sampleYAML))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			cfg.App.SecretKey = "test-secret"
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadReadsSecretFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "app.yaml")
	if err := os.WriteFile(configPath, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_SECRET_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("APP_SECRET_KEY", "")
	os.Unsetenv("APP_SECRET_KEY")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.SecretKey != "from-dotenv" {
		t.Fatalf("secret = %q, want value from .env", cfg.App.SecretKey)
	}
}

func TestLoadFailsWithoutSecret(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "app.yaml")
	if err := os.WriteFile(configPath, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("APP_SECRET_KEY", "")

	if _, err := Load(configPath); err == nil || !strings.Contains(err.Error(), "APP_SECRET_KEY") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}
