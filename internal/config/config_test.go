package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
  timezone: "America/New_York"
api:
  base_url: "http://api.internal:8000/api"
session:
  secret: "from-file"
  resolve_wait: "2s"
`)
	t.Setenv("SESSION_SECRET", "from-env")
	t.Setenv("SESSION_CONFIRM_INTERVAL", "1m")
	t.Setenv("SERVER_TRUSTED_PROXIES", "10.0.0.1, 10.0.0.2")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9000" || cfg.API.BaseURL != "http://api.internal:8000/api" {
		t.Errorf("file values not applied: %+v %+v", cfg.Server, cfg.API)
	}
	if cfg.Session.Secret != "from-env" {
		t.Errorf("env should override file, secret = %q", cfg.Session.Secret)
	}
	if cfg.Timeouts.ResolveWait != 2*time.Second || cfg.Timeouts.ConfirmInterval != time.Minute || cfg.Timeouts.SessionTTL != 336*time.Hour {
		t.Errorf("durations = %s %s", cfg.Session.ResolveWait, cfg.Session.ConfirmInterval)
	}
	if len(cfg.Server.TrustedProxies) != 2 || cfg.Server.TrustedProxies[1] != "10.0.0.2" {
		t.Errorf("trusted proxies = %v", cfg.Server.TrustedProxies)
	}
	if cfg.SMTP.Port != 2525 {
		t.Errorf("smtp port = %d", cfg.SMTP.Port)
	}
	if cfg.Location().String() != "America/New_York" {
		t.Errorf("location = %s", cfg.Location())
	}
	if cfg.Session.Store != StoreMemory || cfg.UsesDatabase() {
		t.Errorf("default store should be memory")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing secret", "api:\n  base_url: http://x/api\n"},
		{"bad store", "session:\n  secret: s\n  store: redis\n"},
		{"bad duration", "session:\n  secret: s\n  ttl: forever\n"},
		{"negative duration", "session:\n  secret: s\n  resolve_wait: -1s\n"},
		{"bad api timeout", "session:\n  secret: s\napi:\n  timeout: 5 seconds\n"},
		{"bad timezone", "session:\n  secret: s\nserver:\n  timezone: Mars/Olympus\n"},
		{"bad api url", "session:\n  secret: s\napi:\n  base_url: not a url\n"},
		{"smtp without host", "session:\n  secret: s\nsmtp:\n  enabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "")
			os.Unsetenv("SESSION_SECRET")
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Session.CookieName == "" {
		t.Fatalf("defaults not applied: %+v", cfg.Server)
	}
	if cfg.IsProduction() {
		t.Fatal("default mode is development")
	}
}
