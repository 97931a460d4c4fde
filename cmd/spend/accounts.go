package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendsync/internal/aggregate"
	"github.com/Veraticus/spendsync/internal/cli"
	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/config"
	"github.com/Veraticus/spendsync/internal/engine"
	"github.com/Veraticus/spendsync/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account", "acc"},
		Short:   "Manage accounts",
	}

	cmd.AddCommand(accountsListCmd())
	cmd.AddCommand(accountsAddCmd())
	cmd.AddCommand(accountsDeleteCmd())
	cmd.AddCommand(accountsActivateCmd())

	return cmd
}

func accountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts and their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), func(cfg *config.Config, session *engine.Session) error {
				out := cmd.OutOrStdout()
				cards := aggregate.Cards(session.Snapshot())
				if len(cards) == 0 {
					fmt.Fprintln(out, cli.FormatInfo("No accounts yet. Add one with: spend accounts add <name>"))
					return nil
				}
				fmt.Fprintln(out, cli.AccountsTable(cards, cfg.Currency))
				return nil
			})
		},
	}
}

func accountsAddCmd() *cobra.Command {
	var (
		accountType string
		balance     string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an account",
		Long: `Create an account on the server. New accounts start inactive with the
default monthly budget.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opening, err := model.ParseAmount("balance", balance)
			if err != nil {
				return err
			}
			account := model.NewAccount{Name: args[0], Type: accountType, Balance: opening}
			return withSession(cmd.Context(), func(_ *config.Config, session *engine.Session) error {
				return execute(cmd.Context(), cmd.OutOrStdout(), session, "Adding the account", engine.AddAccount{Account: account})
			})
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "bank", "account type (bank, cash, credit, ...)")
	cmd.Flags().StringVar(&balance, "balance", "0", "opening balance")

	return cmd
}

func accountsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account and all of its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := model.ID(args[0])
			return withSession(ctx, func(_ *config.Config, session *engine.Session) error {
				account, ok := session.Snapshot().Account(id)
				if !ok {
					return &common.NotFoundError{Kind: "account", ID: id.String()}
				}
				if !yes {
					prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
					confirmed, err := prompter.Confirm(ctx, fmt.Sprintf("Delete %s and all of its transactions?", account.Name))
					if err != nil {
						return err
					}
					if !confirmed {
						fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
						return nil
					}
				}
				return execute(ctx, cmd.OutOrStdout(), session, "Deleting the account", engine.DeleteAccount{ID: id})
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func accountsActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Make an account the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), func(_ *config.Config, session *engine.Session) error {
				id := model.ID(args[0])
				account, ok := session.Snapshot().Account(id)
				if !ok {
					return &common.NotFoundError{Kind: "account", ID: id.String()}
				}
				if err := execute(cmd.Context(), cmd.OutOrStdout(), session, "Switching accounts", engine.SelectAccount{ID: id}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(account.Name+" is now active"))
				return nil
			})
		},
	}
}
