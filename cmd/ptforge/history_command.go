package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ptforge/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently finished jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			out := cmd.OutOrStdout()

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			if store == nil {
				fmt.Fprintln(out, "History is disabled; enable it in the [history] config section")
				return nil
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No finished jobs recorded")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					shortID(record.JobID),
					record.DisplayName(),
					string(record.Status),
					formatHistoryDuration(record.Duration()),
					record.CompletedAt.Local().Format("2006-01-02 15:04"),
					historyDetail(record),
				})
			}
			table := renderTable(
				[]string{"ID", "Job", "Status", "Took", "Finished", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			)
			fmt.Fprintln(out, table)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records to show")
	return cmd
}

func formatHistoryDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}

func historyDetail(record history.Record) string {
	if record.ErrorMessage != "" {
		return record.ErrorMessage
	}
	return record.SessionFile
}
