package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/spf13/viper"

	"github.com/Veraticus/spendsync/internal/common"
)

// Config is the resolved application configuration.
type Config struct {
	ServerURL     string
	CachePath     string
	Currency      string
	LogLevel      string
	LogFormat     string
	ServerTimeout time.Duration
	ServerRetries int
	RecentLimit   int
	CacheEnabled  bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "http://localhost:5000")
	v.SetDefault("server.timeout", 10*time.Second)
	v.SetDefault("server.retries", 3)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "~/.local/share/spend/snapshot.db")
	v.SetDefault("ui.recent_limit", 5)
	v.SetDefault("ui.currency", "INR")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads the configuration from v (config file, SPEND_ environment
// variables and bound flags) and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cachePath, err := resolvePath("cache.path", v.GetString("cache.path"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerURL:     strings.TrimRight(strings.TrimSpace(v.GetString("server.url")), "/"),
		ServerTimeout: v.GetDuration("server.timeout"),
		ServerRetries: v.GetInt("server.retries"),
		CacheEnabled:  v.GetBool("cache.enabled"),
		CachePath:     cachePath,
		RecentLimit:   v.GetInt("ui.recent_limit"),
		Currency:      strings.ToUpper(strings.TrimSpace(v.GetString("ui.currency"))),
		LogLevel:      v.GetString("logging.level"),
		LogFormat:     v.GetString("logging.format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("%w: server.url", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: server.url %q must be an http(s) URL", common.ErrInvalidConfig, c.ServerURL)
	}
	if c.ServerTimeout <= 0 {
		return fmt.Errorf("%w: server.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.ServerRetries < 1 {
		return fmt.Errorf("%w: server.retries must be at least 1", common.ErrInvalidConfig)
	}
	if c.CacheEnabled && c.CachePath == "" {
		return fmt.Errorf("%w: cache.path", common.ErrMissingConfig)
	}
	if c.RecentLimit < 1 {
		return fmt.Errorf("%w: ui.recent_limit must be at least 1", common.ErrInvalidConfig)
	}
	if money.GetCurrency(c.Currency) == nil {
		return fmt.Errorf("%w: unknown currency %q", common.ErrInvalidConfig, c.Currency)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
