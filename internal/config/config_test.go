package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/cvc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.CVCBaseURL != "https://nvc-cnv.canada.ca/v1" {
		t.Errorf("CVCBaseURL = %q", cfg.CVCBaseURL)
	}
	if cfg.CVCAccept != "application/json+fhir" {
		t.Errorf("CVCAccept = %q", cfg.CVCAccept)
	}
	if cfg.CVCAppDesc != "OSCAREMR" {
		t.Errorf("CVCAppDesc = %q", cfg.CVCAppDesc)
	}
	if cfg.CVCBundlePath != "/Bundle/NVC" {
		t.Errorf("CVCBundlePath = %q", cfg.CVCBundlePath)
	}
	if cfg.FetchTimeout != 60*time.Second {
		t.Errorf("FetchTimeout = %s, want 60s", cfg.FetchTimeout)
	}
	if cfg.SyncInterval != 0 {
		t.Errorf("SyncInterval = %s, want 0", cfg.SyncInterval)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/cvc")
	t.Setenv("CVC_BASE_URL", "https://staging.example.org/v1")
	t.Setenv("CVC_DUMP_FILE", "/tmp/bundle.json")
	t.Setenv("SYNC_INTERVAL", "12h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CVCBaseURL != "https://staging.example.org/v1" {
		t.Errorf("CVCBaseURL = %q", cfg.CVCBaseURL)
	}
	if cfg.CVCDumpFile != "/tmp/bundle.json" {
		t.Errorf("CVCDumpFile = %q", cfg.CVCDumpFile)
	}
	if cfg.SyncInterval != 12*time.Hour {
		t.Errorf("SyncInterval = %s, want 12h", cfg.SyncInterval)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		CVCBaseURL:    "https://nvc-cnv.canada.ca/v1",
		CVCBundlePath: "/Bundle/NVC",
		FetchTimeout:  time.Minute,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.CVCBaseURL = "ftp://example.org" }},
		{"trailing slash", func(c *Config) { c.CVCBaseURL = "https://example.org/v1/" }},
		{"relative path", func(c *Config) { c.CVCBundlePath = "Bundle/NVC" }},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"negative interval", func(c *Config) { c.SyncInterval = -time.Hour }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}
