package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"cinelake/internal/contracts"
	"cinelake/internal/logging"
	"cinelake/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover ready batches and run the full pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			registry, err := contracts.Load(cfg.Sources.ContractsFile, cfg.Sources.MappingsFile)
			if err != nil {
				return err
			}

			manager, err := workflow.New(cfg, store, registry, logger)
			if err != nil {
				return err
			}

			report, err := manager.Run(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, report)
			}
			renderRunReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run report as JSON")
	return cmd
}

func renderRunReport(cmd *cobra.Command, report *workflow.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s finished in %s\n", report.RunID,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))

	if len(report.Batches) == 0 {
		fmt.Fprintln(out, "No ready batches found.")
		return
	}

	rows := make([][]string, 0, len(report.Batches))
	for _, br := range report.Batches {
		detail := string(br.Status)
		if br.Outcome != "" {
			detail = string(br.Outcome)
		}
		if br.Error != "" {
			detail = "error: " + br.Error
		}
		rows = append(rows, []string{
			br.Provider,
			br.BatchID,
			detail,
			strconv.Itoa(br.Accepted),
			strconv.Itoa(br.Rejected),
			strconv.Itoa(br.Duplicates),
			strconv.Itoa(br.DriftCount),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Provider", "Batch", "Result", "Accepted", "Rejected", "Duplicates", "Drift"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))

	fmt.Fprintf(out, "Processed %d, skipped %d, conflicted %d, failed %d. Gold snapshot: %d records.\n",
		report.Processed, report.Skipped, report.Conflicted, report.Failed, report.GoldRecords)

	for _, d := range report.Drift {
		fmt.Fprintf(out, "drift: %s %s/%s %s row %d field %q: %s\n",
			d.Kind, d.Provider, d.BatchID, d.SourceFile, d.RowIndex, d.Field, d.Detail)
	}
}
