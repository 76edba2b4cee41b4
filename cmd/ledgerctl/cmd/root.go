// Package cmd provides the ledgerctl commands. Each command wires the ledger the same way the HTTP
// server does and runs as the system actor.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/estate_ledger/internal/platform/bootstrap"
	"github.com/SscSPs/estate_ledger/internal/platform/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	envFile string
	debug   bool
	logger  = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operate the estate ledger from the command line",
	Long: `ledgerctl runs ledger maintenance tasks against the configured storage.

Example:
  ledgerctl accounts seed --file config/chart_of_accounts.yaml
  ledgerctl accounts check
  ledgerctl billing run
  ledgerctl ledger verify
  ledgerctl statements import --file may.csv --bank "First Bank" --account-number 0000000000 --date 2024-05-31`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("load env file %s: %w", envFile, err)
			}
		}
		return nil
	},
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load before reading configuration (default .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(billingCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(statementsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(triggerKeyCmd)
}

// withApp loads configuration, wires the ledger and hands it to fn.
func withApp(ctx context.Context, fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
