package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/platform/bootstrap"
	"github.com/spf13/cobra"
)

var seedFile string

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage the chart of accounts",
}

var accountsSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert accounts from a chart of accounts YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", seedFile, err)
		}
		return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
			created, updated, err := app.Services.Account.SeedChartOfAccounts(ctx, doc, domain.SystemActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d accounts\n", created, updated)
			return nil
		})
	},
}

var accountsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every required system account is provisioned",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
			err := app.Services.Account.EnsureRequiredAccounts(ctx)
			var cfgErr *apperrors.ConfigurationError
			if errors.As(err, &cfgErr) {
				for _, number := range cfgErr.Missing {
					fmt.Fprintf(cmd.OutOrStdout(), "missing: %s\n", number)
				}
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all required accounts present")
			return nil
		})
	},
}

func init() {
	accountsSeedCmd.Flags().StringVar(&seedFile, "file", "config/chart_of_accounts.yaml", "chart of accounts YAML file")
	accountsCmd.AddCommand(accountsSeedCmd)
	accountsCmd.AddCommand(accountsCheckCmd)
}
