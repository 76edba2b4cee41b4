package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/platform/bootstrap"
	"github.com/SscSPs/estate_ledger/internal/utils/mapping"
	"github.com/SscSPs/estate_ledger/internal/utils/statement"
	"github.com/spf13/cobra"
)

var (
	statementFile    string
	statementBank    string
	statementAccount string
	statementDate    string
)

var statementsCmd = &cobra.Command{
	Use:   "statements",
	Short: "Bank statement reconciliation",
}

var statementsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Parse a CSV or XLSX bank statement and reconcile it against open bills",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := mapping.ParseDate("date", statementDate)
		if err != nil {
			return err
		}
		format, err := statement.FormatFromFilename(statementFile)
		if err != nil {
			return err
		}
		f, err := os.Open(statementFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", statementFile, err)
		}
		defer f.Close()

		entries, err := statement.Parse(format, f)
		if err != nil {
			return err
		}
		meta := domain.StatementMeta{
			BankName:      statementBank,
			AccountNumber: statementAccount,
			StatementDate: date,
		}
		return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
			result, err := app.Services.Reconciliation.ReconcileStatement(ctx, meta, entries, domain.SystemActor)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		})
	},
}

func init() {
	flags := statementsImportCmd.Flags()
	flags.StringVar(&statementFile, "file", "", "statement file (.csv or .xlsx)")
	flags.StringVar(&statementBank, "bank", "", "bank name")
	flags.StringVar(&statementAccount, "account-number", "", "bank account number the statement belongs to")
	flags.StringVar(&statementDate, "date", "", "statement date (YYYY-MM-DD)")
	for _, name := range []string{"file", "bank", "account-number", "date"} {
		_ = statementsImportCmd.MarkFlagRequired(name)
	}
	statementsCmd.AddCommand(statementsImportCmd)
}
