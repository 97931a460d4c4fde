package main

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spendsync/internal/apitest"
	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/tui"
)

func tuiCmd() *cobra.Command {
	var (
		demo    bool
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		Long: `Open the interactive dashboard. Cached data is shown immediately when
available and replaced once the server responds.

With --demo the dashboard talks to an in-process server seeded with sample
accounts, and nothing is cached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if demo {
				server := apitest.NewServer(apitest.DemoSnapshot(time.Now()))
				defer server.Close()
				viper.Set("server.url", server.URL())
				viper.Set("cache.enabled", false)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// The alternate screen owns the terminal while the dashboard runs.
			logOut := io.Discard
			if logFile != "" {
				f, err := tea.LogToFile(logFile, "spend")
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}
			if err := common.SetupLogger(logOut, cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			defer func() {
				_ = setupLogging()
			}()

			session, cleanup, err := newSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			common.LogInfo("Starting dashboard", common.Fields{"server": cfg.ServerURL, "demo": demo})
			return tui.Run(ctx,
				tui.WithSession(session),
				tui.WithCurrency(cfg.Currency),
				tui.WithTimeout(cfg.ServerTimeout*time.Duration(cfg.ServerRetries)),
			)
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "run against a built-in server with sample data")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the dashboard is open")

	return cmd
}
