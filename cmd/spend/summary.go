package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendsync/internal/cli"
	"github.com/Veraticus/spendsync/internal/common"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the budget, recent transactions and spending breakdown",
		Long: `Show the active account's budget usage, its most recent transactions and
its spending by category.

When the server cannot be reached and a cached snapshot exists, the cached
data is shown with a warning.`,
		Args: cobra.NoArgs,
		RunE: runSummary,
	}
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

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
		if len(session.Snapshot().Accounts) == 0 {
			return err
		}
		fmt.Fprintln(out, cli.FormatWarning(common.UserMessage(err)+". Showing cached data."))
	}

	fmt.Fprintln(out, cli.Summary(session.Dashboard(), cfg.Currency))
	return nil
}
