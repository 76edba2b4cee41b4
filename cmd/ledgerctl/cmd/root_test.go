package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/utils/credentials"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("CHART_OF_ACCOUNTS_FILE", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAccountsSeed(t *testing.T) {
	out, err := run(t, "accounts", "seed", "--file", "../../../config/chart_of_accounts.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "created 9, updated 0 accounts")
}

func TestAccountsCheckReportsMissing(t *testing.T) {
	out, err := run(t, "accounts", "check")
	require.Error(t, err)
	assert.Contains(t, out, "missing: 1100")
	assert.Contains(t, out, "missing: 4000")
}

func TestLedgerVerifyOnEmptyLedger(t *testing.T) {
	out, err := run(t, "ledger", "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "ledger consistent")
}

func TestBillingRunFailsWithoutSystemAccounts(t *testing.T) {
	_, err := run(t, "billing", "run")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestStatementsImportRequiresFlags(t *testing.T) {
	_, err := run(t, "statements", "import", "--file", "may.csv")
	require.Error(t, err)
}

func TestTokenIssue(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("JWT_ISSUER", "estate-cli")

	out, err := run(t, "token", "issue", "--subject", "user-7", "--role", "accountant")
	require.NoError(t, err)

	claims, err := credentials.ParseToken(strings.TrimSpace(out), "cli-test-secret", "estate-cli")
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims.Subject)
	assert.Equal(t, domain.RoleAccountant, claims.Role)
}

func TestTriggerKeyGenerate(t *testing.T) {
	out, err := run(t, "trigger-key", "generate", "--bytes", "8")
	require.NoError(t, err)

	var key, hash string
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, "key:  "); ok {
			key = v
		}
		if v, ok := strings.CutPrefix(line, "hash: "); ok {
			hash = v
		}
	}
	assert.Len(t, key, 16)
	assert.True(t, credentials.CheckTriggerKey(key, hash))
}
