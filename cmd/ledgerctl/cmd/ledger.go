package cmd

import (
	"context"
	"fmt"

	"github.com/SscSPs/estate_ledger/internal/platform/bootstrap"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Ledger integrity tasks",
}

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay posted lines and compare them with stored account balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
			discrepancies, err := app.Services.Journal.VerifyLedger(ctx)
			if err != nil {
				return err
			}
			if len(discrepancies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "ledger consistent")
				return nil
			}
			if err := printJSON(cmd.OutOrStdout(), discrepancies); err != nil {
				return err
			}
			return fmt.Errorf("%d account(s) out of balance", len(discrepancies))
		})
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerVerifyCmd)
}
