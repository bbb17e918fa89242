package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ptforge/internal/ipc"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var req ipc.QueueAddRequest

	cmd := &cobra.Command{
		Use:   "add <folder>",
		Short: "Queue a song or album folder for session creation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve folder: %w", err)
			}
			req.Folder = folder

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.QueueAdd(req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(resp.Jobs) == 1 {
					fmt.Fprintf(out, "Queued %s\n", resp.Jobs[0].DisplayName)
					return nil
				}
				fmt.Fprintf(out, "Queued %d songs:\n", len(resp.Jobs))
				for _, job := range resp.Jobs {
					fmt.Fprintf(out, "  %s  %s\n", shortID(job.ID), job.DisplayName)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Artist, "artist", "", "Artist name (overrides the folder-name convention)")
	cmd.Flags().StringVar(&req.Song, "song", "", "Song name (overrides the folder-name convention)")
	cmd.Flags().StringVar(&req.Project, "project", "", "Project name grouping sessions under a subdirectory")
	cmd.Flags().IntVar(&req.SampleRate, "sample-rate", 0, "Session sample rate in Hz (default: probed from audio)")
	cmd.Flags().IntVar(&req.BitDepth, "bit-depth", 0, "Session bit depth (default: probed from audio)")
	cmd.Flags().StringVar(&req.Template, "template", "", "Template session to import, by path or template dir name")

	return cmd
}
