package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"cinelake/internal/lake"
	"cinelake/internal/query"
	"cinelake/internal/stage"
)

func newQueryCommand(ctx *commandContext) *cobra.Command {
	var (
		listLimit  int
		movieKey   string
		title      string
		year       int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Look up curated movie records",
		Long: `Look up curated movie records in the gold snapshot.

Exactly one of --list, --key, or --title selects the lookup. A title
without a year matches case-insensitive substrings; adding --year
requires an exact title and year.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			selectors := 0
			if cmd.Flags().Changed("list") {
				selectors++
			}
			if movieKey != "" {
				selectors++
			}
			if title != "" {
				selectors++
			}
			if selectors != 1 {
				return errors.New("specify exactly one of --list, --key, or --title")
			}
			if cmd.Flags().Changed("year") && title == "" {
				return errors.New("--year requires --title")
			}

			_, store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			engine := query.NewEngine(store)

			var records []lake.GoldRecord
			switch {
			case movieKey != "":
				record, err := engine.ByKey(cmd.Context(), movieKey)
				if err != nil {
					if errors.Is(err, stage.ErrNotFound) {
						return fmt.Errorf("no movie with key %q", movieKey)
					}
					return err
				}
				records = []lake.GoldRecord{*record}
			case title != "" && cmd.Flags().Changed("year"):
				if records, err = engine.ByTitleYear(cmd.Context(), title, year); err != nil {
					return err
				}
			case title != "":
				if records, err = engine.ByTitle(cmd.Context(), title); err != nil {
					return err
				}
			default:
				if records, err = engine.List(cmd.Context(), listLimit); err != nil {
					return err
				}
			}

			if jsonOutput {
				return writeJSON(cmd, records)
			}
			renderGoldRecords(cmd, records)
			return nil
		},
	}

	cmd.Flags().IntVar(&listLimit, "list", 20, "List up to N records by movie key")
	cmd.Flags().StringVar(&movieKey, "key", "", "Look up one record by movie key")
	cmd.Flags().StringVar(&title, "title", "", "Look up records by title")
	cmd.Flags().IntVar(&year, "year", 0, "Restrict a title lookup to an exact year")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit records as JSON")
	return cmd
}

func renderGoldRecords(cmd *cobra.Command, records []lake.GoldRecord) {
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No matching records.")
		return
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.MovieKey,
			record.Title,
			strconv.Itoa(record.Year),
			formatFields(record.Fields),
			fmt.Sprintf("%v", record.Sources),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Key", "Title", "Year", "Fields", "Sources"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))
}

// formatFields renders the merged extra fields deterministically, leaving
// out title and year which have their own columns.
func formatFields(fields map[string]any) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if name == "title" || name == "year" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	result := ""
	for i, name := range names {
		if i > 0 {
			result += " "
		}
		result += fmt.Sprintf("%s=%v", name, fields[name])
	}
	return result
}
