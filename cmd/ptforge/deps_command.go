package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ptforge/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run environment checks without starting the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			results := preflight.RunAll(cmd.Context(), cfg)
			for _, line := range renderSectionHeader("Environment Checks", colorize) {
				fmt.Fprintln(stdout, line)
			}
			failed := 0
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					if result.Optional {
						kind = statusWarn
					} else {
						kind = statusError
						failed++
					}
				}
				fmt.Fprintln(stdout, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if failed > 0 {
				return fmt.Errorf("%d required checks failed", failed)
			}
			fmt.Fprintln(stdout, "\nAll required checks passed")
			return nil
		},
	}
}
