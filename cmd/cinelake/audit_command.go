package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"cinelake/internal/lake"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the batch audit ledger, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.ListAudit(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			renderAuditEntries(cmd, entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show (0 shows all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit entries as JSON")
	return cmd
}

func renderAuditEntries(cmd *cobra.Command, entries []lake.AuditEntry) {
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "Audit ledger is empty.")
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.ProcessedAt.Local().Format(time.RFC3339),
			entry.Provider,
			entry.BatchID,
			string(entry.Outcome),
			strconv.Itoa(entry.RecordCount),
			strconv.Itoa(entry.SkippedRows),
			shortFingerprint(entry.Fingerprint),
			entry.RunID,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Processed", "Provider", "Batch", "Outcome", "Records", "Skipped", "Fingerprint", "Run"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))
}

func shortFingerprint(fingerprint string) string {
	if len(fingerprint) > 12 {
		return fingerprint[:12]
	}
	return fingerprint
}
