package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/spendsync/internal/config"
	"github.com/Veraticus/spendsync/internal/engine"
	"github.com/Veraticus/spendsync/internal/model"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage the active account's budget",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <amount>",
		Short: "Set the monthly limit of the active account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := model.ParseAmount("budget limit", args[0])
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), func(_ *config.Config, session *engine.Session) error {
				return execute(cmd.Context(), cmd.OutOrStdout(), session, "Updating the budget", engine.UpdateBudget{Limit: limit})
			})
		},
	})

	return cmd
}
