package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/platform/config"
	"github.com/SscSPs/estate_ledger/internal/utils/credentials"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenRole    string
	tokenTTL     time.Duration
	keyBytes     int
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Bearer token helpers for local environments",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Sign a bearer token with the configured JWT secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		role := domain.Role(strings.ToUpper(tokenRole))
		switch role {
		case domain.RoleAdmin, domain.RoleAccountant, domain.RoleViewer:
		default:
			return fmt.Errorf("unknown role %q", tokenRole)
		}
		signed, err := credentials.IssueToken(cfg.JWTSecret, cfg.JWTIssuer, tokenSubject, role, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), signed)
		return nil
	},
}

var triggerKeyCmd = &cobra.Command{
	Use:   "trigger-key",
	Short: "Billing scheduler trigger key helpers",
}

var triggerKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a scheduler trigger key and the hash to put in BILLING_TRIGGER_KEY_HASH",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, hash, err := credentials.GenerateTriggerKey(keyBytes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "key:  %s\nhash: %s\n", key, hash)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenSubject, "subject", "", "user id placed in the token subject")
	tokenIssueCmd.Flags().StringVar(&tokenRole, "role", string(domain.RoleViewer), "ADMIN, ACCOUNTANT or VIEWER")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	_ = tokenIssueCmd.MarkFlagRequired("subject")
	tokenCmd.AddCommand(tokenIssueCmd)

	triggerKeyGenerateCmd.Flags().IntVar(&keyBytes, "bytes", 32, "random bytes in the key")
	triggerKeyCmd.AddCommand(triggerKeyGenerateCmd)
}
