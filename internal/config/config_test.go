package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Session.Store != "sqlite" {
		t.Errorf("expected sqlite session store, got %q", cfg.Session.Store)
	}
	if cfg.Weather.BaseURL != "https://api.open-meteo.com" {
		t.Errorf("unexpected weather base url %q", cfg.Weather.BaseURL)
	}
	if cfg.Weather.Timeout != 10*time.Second {
		t.Errorf("expected 10s weather timeout, got %v", cfg.Weather.Timeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("WEATHER_TIMEOUT", "3s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("expected 2h ttl, got %v", cfg.Session.TTL)
	}
	if cfg.Weather.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", cfg.Weather.Timeout)
	}
	if len(cfg.API.CORSOrigins) != 2 || cfg.API.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected cors origins %v", cfg.API.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "server:\n  port: 7000\ndatabase:\n  path: /tmp/board.db\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/tmp/board.db" {
		t.Errorf("expected file database path, got %q", cfg.Database.Path)
	}
	// env wins over the file
	if cfg.Server.Port != 7001 {
		t.Errorf("expected env port 7001, got %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "Port"},
		{"unknown store", func(c *Config) { c.Session.Store = "redis" }, "Store"},
		{"badger without path", func(c *Config) { c.Session.Store = "badger"; c.Session.Path = "" }, "session.path"},
		{"bad weather url", func(c *Config) { c.Weather.BaseURL = "not a url" }, "BaseURL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "Format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
