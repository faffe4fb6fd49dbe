package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string        `mapstructure:"PORT"`
	Env           string        `mapstructure:"ENV"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32         `mapstructure:"DB_MIN_CONNS"`
	CVCBaseURL    string        `mapstructure:"CVC_BASE_URL"`
	CVCAccept     string        `mapstructure:"CVC_ACCEPT"`
	CVCAppDesc    string        `mapstructure:"CVC_APP_DESC"`
	CVCBundlePath string        `mapstructure:"CVC_BUNDLE_PATH"`
	CVCDumpFile   string        `mapstructure:"CVC_DUMP_FILE"`
	FetchTimeout  time.Duration `mapstructure:"CVC_FETCH_TIMEOUT"`
	SyncInterval  time.Duration `mapstructure:"SYNC_INTERVAL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CVC_BASE_URL", "https://nvc-cnv.canada.ca/v1")
	v.SetDefault("CVC_ACCEPT", "application/json+fhir")
	v.SetDefault("CVC_APP_DESC", "OSCAREMR")
	v.SetDefault("CVC_BUNDLE_PATH", "/Bundle/NVC")
	v.SetDefault("CVC_FETCH_TIMEOUT", "60s")
	v.SetDefault("SYNC_INTERVAL", "0")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CVC_BASE_URL")
	v.BindEnv("CVC_ACCEPT")
	v.BindEnv("CVC_APP_DESC")
	v.BindEnv("CVC_BUNDLE_PATH")
	v.BindEnv("CVC_DUMP_FILE")
	v.BindEnv("CVC_FETCH_TIMEOUT")
	v.BindEnv("SYNC_INTERVAL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run with.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.CVCBaseURL, "http://") && !strings.HasPrefix(c.CVCBaseURL, "https://") {
		return fmt.Errorf("CVC_BASE_URL must be an http(s) URL, got %q", c.CVCBaseURL)
	}
	if strings.HasSuffix(c.CVCBaseURL, "/") {
		return fmt.Errorf("CVC_BASE_URL must not end with a slash, got %q", c.CVCBaseURL)
	}
	if !strings.HasPrefix(c.CVCBundlePath, "/") {
		return fmt.Errorf("CVC_BUNDLE_PATH must start with a slash, got %q", c.CVCBundlePath)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("CVC_FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	if c.SyncInterval < 0 {
		return fmt.Errorf("SYNC_INTERVAL must not be negative, got %s", c.SyncInterval)
	}
	return nil
}
