package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/spendsync/internal/api"
	"github.com/Veraticus/spendsync/internal/cli"
	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/config"
	"github.com/Veraticus/spendsync/internal/engine"
	"github.com/Veraticus/spendsync/internal/storage"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// loadConfig resolves the configuration from the global viper instance.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// newSession builds the remote client, the optional snapshot cache and the
// session on top of them. The returned cleanup closes the cache.
func newSession(ctx context.Context, cfg *config.Config) (*engine.Session, func(), error) {
	retry := common.DefaultRetryOptions()
	retry.MaxAttempts = cfg.ServerRetries

	client := api.NewClient(cfg.ServerURL,
		api.WithTimeout(cfg.ServerTimeout),
		api.WithRetry(retry),
	)

	sessionCfg := engine.DefaultConfig()
	sessionCfg.RecentLimit = cfg.RecentLimit
	cleanup := func() {}

	if cfg.CacheEnabled {
		cache, err := storage.NewSQLiteCache(cfg.CachePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open cache: %w", err)
		}
		if err := cache.Migrate(ctx); err != nil {
			_ = cache.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		sessionCfg.Cache = cache
		cleanup = func() {
			if closeErr := cache.Close(); closeErr != nil {
				slog.Error("failed to close cache", "error", closeErr)
			}
		}
	}

	common.LogDebug("Session ready", common.Fields{"server": cfg.ServerURL, "cache": cfg.CacheEnabled})
	return engine.NewWithConfig(client, sessionCfg), cleanup, nil
}

// withSession loads the configuration, warms a session from the server and
// hands it to fn.
func withSession(ctx context.Context, fn func(*config.Config, *engine.Session) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	session, cleanup, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := session.Warm(ctx); err != nil {
		return err
	}
	return fn(cfg, session)
}

// execute sends one command to the server and prints the notices it produced.
func execute(ctx context.Context, out io.Writer, session *engine.Session, op string, command engine.Command) error {
	track(op)
	defer track("")

	notices, err := session.Execute(ctx, command)
	printNotices(out, notices)
	return err
}

func printNotices(out io.Writer, notices []string) {
	for _, notice := range notices {
		fmt.Fprintln(out, cli.FormatSuccess(notice))
	}
}

func track(op string) {
	if interrupts != nil {
		interrupts.Track(op)
	}
}
