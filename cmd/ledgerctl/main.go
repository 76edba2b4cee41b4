// Package main is the entry point for ledgerctl, the estate ledger operator CLI.
package main

import (
	"os"

	"github.com/SscSPs/estate_ledger/cmd/ledgerctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
