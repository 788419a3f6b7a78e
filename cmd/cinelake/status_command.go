package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cinelake/internal/workflow"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check pipeline dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			checks := workflow.HealthChecks(cfg)
			if jsonOutput {
				if err := writeJSON(cmd, checks); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := isTerminal(out)
				for _, check := range checks {
					marker := "ok"
					if colorize {
						marker = ansiGreen + "ok" + ansiReset
					}
					if !check.Ready {
						marker = "FAIL"
						if colorize {
							marker = ansiRed + "FAIL" + ansiReset
						}
					}
					fmt.Fprintf(out, "%-12s %s", check.Name, marker)
					if check.Detail != "" {
						fmt.Fprintf(out, "  %s", check.Detail)
					}
					fmt.Fprintln(out)
				}
			}

			for _, check := range checks {
				if !check.Ready {
					return errors.New("one or more checks failed")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit checks as JSON")
	return cmd
}
