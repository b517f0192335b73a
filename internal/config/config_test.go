package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Institutions) == 0 {
		t.Error("expected institutions to be populated")
	}
	if cfg.API.MaxRetries != 3 {
		t.Errorf("expected max_retries 3, got %d", cfg.API.MaxRetries)
	}
	if cfg.API.PaginationLimit != 1000 {
		t.Errorf("expected pagination_limit 1000, got %d", cfg.API.PaginationLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestParseMinimalConfigAppliesDefaults(t *testing.T) {
	data := []byte(`
api:
  base_url: https://api.example.com/v1
monitored_institutions:
  - ticker: RY-CA
    name: Royal Bank of Canada
    type: Canadian_Banks
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.API.RequestDelaySeconds != 2 {
		t.Errorf("expected default request delay, got %v", cfg.API.RequestDelaySeconds)
	}
	if len(cfg.API.TranscriptTypes) != 2 {
		t.Errorf("expected default transcript types, got %v", cfg.API.TranscriptTypes)
	}
	if !cfg.API.UseExponentialBackoff {
		t.Error("expected exponential backoff by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("minimal config should validate: %v", err)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"missing base URL", func(c *Config) { c.API.BaseURL = "" }, "base_url"},
		{"no institutions", func(c *Config) { c.Institutions = nil }, "monitored_institutions"},
		{"institution missing type", func(c *Config) { c.Institutions[0].Type = "" }, "type"},
		{"zero retries", func(c *Config) { c.API.MaxRetries = 0 }, "max_retries"},
		{"no transcript types", func(c *Config) { c.API.TranscriptTypes = nil }, "transcript_types"},
		{"start year too early", func(c *Config) { c.Sync.StartYear = 1995 }, "start_year"},
		{"start year in future", func(c *Config) { c.Sync.StartYear = 2999 }, "start_year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parse(DefaultConfigYAML)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Institutions) == 0 {
		t.Error("expected institutions to be populated from file")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	if cfg.GetDataDir() == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Storage.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("API_USERNAME", "user")
	t.Setenv("API_PASSWORD", "pass")

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.Username != "user" || creds.Password != "pass" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
}

func TestLoadCredentialsListsAllMissing(t *testing.T) {
	t.Setenv("API_USERNAME", "")
	t.Setenv("API_PASSWORD", "")

	_, err := LoadCredentials()
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	for _, name := range []string{"API_USERNAME", "API_PASSWORD"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
}
