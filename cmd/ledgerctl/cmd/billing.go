package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/platform/bootstrap"
	"github.com/spf13/cobra"
)

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Resident billing tasks",
}

var billingRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate bills for every resident whose next billing date has arrived",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *bootstrap.App) error {
			result, err := app.Services.Billing.GenerateBillsForAllEligible(ctx, domain.SystemActor)
			if err != nil {
				return err
			}
			logger.Info("Batch billing finished",
				slog.Int("success", result.Success),
				slog.Int("failed", result.Failed),
				slog.Int("skipped", result.Skipped),
			)
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d resident(s) failed to bill", result.Failed)
			}
			return nil
		})
	},
}

func init() {
	billingCmd.AddCommand(billingRunCmd)
}
