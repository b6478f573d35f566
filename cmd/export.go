package cmd

import (
	"context"
	"os"

	"github.com/frahmantamala/budget-ledger/internal/ledger"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the ledger as CSV to stdout",
	Long:  `Write every transaction as CSV to stdout. Combine with --seed to export the sample ledger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		deps, err := bootstrap(ctx, os.Stderr)
		if err != nil {
			return err
		}
		defer deps.Close(context.Background())

		rows, err := deps.Ledger.ExportTransactions(ctx)
		if err != nil {
			return err
		}
		return ledger.WriteCSV(os.Stdout, rows)
	},
}
