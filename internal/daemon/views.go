package daemon

import (
	"time"

	"ptforge/internal/queue"
)

// JobView is the wire representation of a job shared by the IPC and HTTP
// control surfaces.
type JobView struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"display_name"`
	Artist       string     `json:"artist"`
	Song         string     `json:"song"`
	Project      string     `json:"project,omitempty"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	ErrorMessage string     `json:"error_message,omitempty"`
	SessionFile  string     `json:"session_file"`
	QueuedAt     time.Time  `json:"queued_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// ViewOf converts a queue job into its wire representation.
func ViewOf(job *queue.Job) JobView {
	view := JobView{
		ID:           job.ID,
		DisplayName:  job.DisplayName(),
		Artist:       job.Spec.Artist(),
		Song:         job.Spec.SongName(),
		Project:      job.Spec.ProjectName(),
		Status:       string(job.Status),
		Progress:     job.Progress,
		ErrorMessage: job.ErrorMessage,
		SessionFile:  job.Spec.SessionFile(),
		QueuedAt:     job.QueuedAt,
	}
	if !job.StartedAt.IsZero() {
		started := job.StartedAt
		view.StartedAt = &started
	}
	if !job.CompletedAt.IsZero() {
		completed := job.CompletedAt
		view.CompletedAt = &completed
	}
	return view
}
