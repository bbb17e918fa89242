package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ptforge/internal/deps"
	"ptforge/internal/ipc"
	"ptforge/internal/preflight"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the ptforge daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if !resp.Stopped {
					return fmt.Errorf("daemon declined stop request")
				}
				return nil
			})
			if err != nil {
				if strings.Contains(err.Error(), "not found") {
					fmt.Fprintln(stdout, "Daemon is not running")
					return nil
				}
				return err
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency, and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatusCommand(cmd, ctx)
		},
	}

	return []*cobra.Command{stopCmd, statusCmd}
}

func runStatusCommand(cmd *cobra.Command, ctx *commandContext) error {
	cfg := ctx.configValue()
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	var status *ipc.StatusResponse
	var jobs []ipc.JobView
	daemonErr := ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.Status()
		if err != nil {
			return err
		}
		status = resp
		list, err := client.QueueList()
		if err != nil {
			return err
		}
		jobs = list.Jobs
		return nil
	})

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if daemonErr != nil || status == nil {
		fmt.Fprintln(stdout, renderStatusLine("Daemon", statusWarn, "Not running", colorize))
	} else {
		fmt.Fprintln(stdout, renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running (pid %d)", status.PID), colorize))
		fmt.Fprintln(stdout, renderStatusLine("Started", statusInfo, status.StartedAt, colorize))
		fmt.Fprintln(stdout, renderStatusLine("Processing", statusInfo, yesNo(status.Current != nil), colorize))
		if status.Current != nil {
			detail := fmt.Sprintf("%s (%d%%)", status.Current.DisplayName, status.Current.Progress)
			fmt.Fprintln(stdout, renderStatusLine("Current Job", statusInfo, detail, colorize))
		}
		if status.HistoryPath != "" {
			fmt.Fprintln(stdout, renderStatusLine("History", statusInfo, status.HistoryPath, colorize))
		}
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(stdout, line)
	}
	for _, line := range dependencyLines(deps.CheckBinaries(deps.Required(cfg)), colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Paths", colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, directoryStatusLine("Sessions", cfg.Paths.OutputDir, colorize))
	fmt.Fprintln(stdout, directoryStatusLine("Logs", cfg.Paths.LogDir, colorize))
	if cfg.Paths.WatchDir != "" {
		fmt.Fprintln(stdout, directoryStatusLine("Watch Folder", cfg.Paths.WatchDir, colorize))
	} else {
		fmt.Fprintln(stdout, renderStatusLine("Watch Folder", statusInfo, "Disabled", colorize))
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Queue", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if daemonErr != nil {
		fmt.Fprintln(stdout, "Queue unavailable (daemon not running)")
		return nil
	}
	rows := buildQueueStatusRows(jobs)
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "Queue is empty")
		return nil
	}
	table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
	fmt.Fprintln(stdout, table)
	return nil
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses))
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, dep.Detail, colorize))
	}
	return lines
}

func directoryStatusLine(label, path string, colorize bool) string {
	result := preflight.CheckDirectoryAccess(label, path)
	if result.Passed {
		return renderStatusLine(label, statusOK, result.Detail, colorize)
	}
	return renderStatusLine(label, statusError, result.Detail, colorize)
}
