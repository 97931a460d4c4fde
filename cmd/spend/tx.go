package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendsync/internal/config"
	"github.com/Veraticus/spendsync/internal/engine"
	"github.com/Veraticus/spendsync/internal/model"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record transactions",
	}

	cmd.AddCommand(txAddCmd())

	return cmd
}

type txFlags struct {
	title    string
	category string
	amount   string
	txnType  string
	date     string
}

func txAddCmd() *cobra.Command {
	var flags txFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction against the active account",
		Example: `  spend tx add --title Chai --category Food --amount 20
  spend tx add --title Salary --category Income --amount 50000 --type income --date 2024-06-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txn, err := flags.transaction(time.Now())
			if err != nil {
				return err
			}
			return withSession(cmd.Context(), func(_ *config.Config, session *engine.Session) error {
				return execute(cmd.Context(), cmd.OutOrStdout(), session, "Adding the transaction", engine.AddTransaction{Transaction: txn})
			})
		},
	}

	cmd.Flags().StringVar(&flags.title, "title", "", "what the money was for")
	cmd.Flags().StringVar(&flags.category, "category", "", "spending category")
	cmd.Flags().StringVar(&flags.amount, "amount", "", "amount, never negative")
	cmd.Flags().StringVar(&flags.txnType, "type", string(model.TypeExpense), "expense or income")
	cmd.Flags().StringVar(&flags.date, "date", "", "date as YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// transaction parses the flags. The account is filled in when the command runs.
func (f txFlags) transaction(now time.Time) (model.NewTransaction, error) {
	amount, err := model.ParseAmount("amount", f.amount)
	if err != nil {
		return model.NewTransaction{}, err
	}

	date := model.NewDate(now)
	if strings.TrimSpace(f.date) != "" {
		if date, err = model.ParseDate(f.date); err != nil {
			return model.NewTransaction{}, err
		}
	}

	return model.NewTransaction{
		Title:    strings.TrimSpace(f.title),
		Category: strings.TrimSpace(f.category),
		Amount:   amount,
		Type:     model.TransactionType(strings.ToLower(strings.TrimSpace(f.txnType))),
		Date:     date,
	}, nil
}
