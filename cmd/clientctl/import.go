package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clientdesk/clientdesk/internal/importer"
	"github.com/clientdesk/clientdesk/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <workbook.xlsx>",
	Short: "Import a client workbook into the database",
	Long: `Import parses the given .xlsx workbook, validates each row, and upserts
the records by card code. Rows that fail validation are skipped and
reported; the rest are applied in a single transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Import.Timeout)
		defer cancel()

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		st, err := store.NewSession(ctx, pool)
		if err != nil {
			return err
		}
		defer st.Close(ctx)

		result, err := importer.Run(ctx, args[0], st)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Import %s finished in %s\n", result.FileName, result.Duration.Round(time.Millisecond))
		fmt.Fprintf(out, "  rows:     %d\n", result.TotalRows)
		fmt.Fprintf(out, "  inserted: %d\n", result.Inserted)
		fmt.Fprintf(out, "  updated:  %d\n", result.Updated)
		fmt.Fprintf(out, "  renamed:  %d\n", result.Renamed)
		fmt.Fprintf(out, "  skipped:  %d\n", len(result.Skipped))
		for _, skip := range result.Skipped {
			fmt.Fprintf(out, "    line %d (%s): %s %s\n", skip.Line, skip.Subject, skip.Field, skip.Reason)
		}
		return nil
	},
}
