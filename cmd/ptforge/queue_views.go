package main

import (
	"fmt"
	"strings"

	"ptforge/internal/ipc"
)

const displayIDWidth = 8

func shortID(id string) string {
	if len(id) <= displayIDWidth {
		return id
	}
	return id[:displayIDWidth]
}

func buildJobRows(jobs []ipc.JobView) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			shortID(job.ID),
			job.DisplayName,
			job.Status,
			fmt.Sprintf("%d%%", job.Progress),
			job.QueuedAt.Local().Format("15:04:05"),
			jobDetail(job),
		})
	}
	return rows
}

func jobDetail(job ipc.JobView) string {
	if job.ErrorMessage != "" {
		return job.ErrorMessage
	}
	if job.Status == "completed" {
		return job.SessionFile
	}
	return ""
}

func buildQueueStatusRows(jobs []ipc.JobView) [][]string {
	counts := make(map[string]int)
	for _, job := range jobs {
		counts[job.Status]++
	}
	order := []string{"running", "pending", "completed", "failed"}
	rows := make([][]string, 0, len(order))
	for _, status := range order {
		if count, ok := counts[status]; ok {
			rows = append(rows, []string{status, fmt.Sprintf("%d", count)})
		}
	}
	return rows
}

func matchJobID(jobs []ipc.JobView, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("job id is required")
	}
	matches := make([]string, 0, 1)
	for _, job := range jobs {
		if job.ID == arg || strings.HasPrefix(job.ID, arg) {
			matches = append(matches, job.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no queued job matches id %q", arg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id %q is ambiguous (%d matches); use a longer prefix", arg, len(matches))
	}
}
