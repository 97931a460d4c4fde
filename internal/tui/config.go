package tui

import (
	"time"

	"github.com/Veraticus/spendsync/internal/display"
	"github.com/Veraticus/spendsync/internal/engine"
	"github.com/Veraticus/spendsync/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Session  *engine.Session
	Now      func() time.Time
	Currency string
	Width    int
	Height   int
	// Timeout bounds each remote round trip started from the dashboard.
	Timeout time.Duration
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		Now:      time.Now,
		Currency: display.DefaultCurrency,
		Width:    80,
		Height:   24,
		Timeout:  30 * time.Second,
	}
}

// WithSession sets the session the dashboard renders and mutates.
func WithSession(session *engine.Session) Option {
	return func(c *Config) {
		c.Session = session
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithCurrency sets the ISO code used to format amounts.
func WithCurrency(code string) Option {
	return func(c *Config) {
		if code != "" {
			c.Currency = code
		}
	}
}

// WithTimeout bounds each remote round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithClock overrides the clock used to date new transactions.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}
