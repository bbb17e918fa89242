package ipc

import "ptforge/internal/daemon"

// JobView mirrors the HTTP API job DTO for IPC callers.
type JobView = daemon.JobView

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running     bool     `json:"running"`
	PID         int      `json:"pid"`
	RunID       string   `json:"run_id"`
	StartedAt   string   `json:"started_at"`
	LockPath    string   `json:"lock_path"`
	QueueSize   int      `json:"queue_size"`
	Current     *JobView `json:"current,omitempty"`
	HistoryPath string   `json:"history_path,omitempty"`
}

// QueueListRequest fetches all jobs.
type QueueListRequest struct{}

// QueueListResponse contains the current job followed by pending jobs.
type QueueListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// QueueAddRequest enqueues a song or album folder.
type QueueAddRequest struct {
	Folder     string `json:"folder"`
	Artist     string `json:"artist"`
	Song       string `json:"song"`
	Project    string `json:"project"`
	SampleRate int    `json:"sample_rate"`
	BitDepth   int    `json:"bit_depth"`
	Template   string `json:"template"`
}

// QueueAddResponse lists the jobs created from the folder.
type QueueAddResponse struct {
	Jobs []JobView `json:"jobs"`
}

// QueueRemoveRequest removes a pending job by id.
type QueueRemoveRequest struct {
	ID string `json:"id"`
}

// QueueRemoveResponse reports whether the job was removed.
type QueueRemoveResponse struct {
	Removed bool `json:"removed"`
}

// QueueClearRequest drops all pending jobs.
type QueueClearRequest struct{}

// QueueClearResponse reports the number of removed jobs.
type QueueClearResponse struct {
	Removed int `json:"removed"`
}

// StopRequest asks the daemon to shut down gracefully.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
