package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ptforge/internal/session"
)

// Status represents the lifecycle of a queued job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// Job is the mutable runtime record for one queued session build. The
// embedded Spec never changes; status, progress, and timestamps do. A Job
// is mutated only by the consumer that holds it as the current job, so the
// struct itself carries no lock.
type Job struct {
	ID           string
	Spec         *session.Spec
	Status       Status
	Progress     int
	ErrorMessage string
	QueuedAt     time.Time
	StartedAt    time.Time
	CompletedAt  time.Time
}

// NewJob wraps a validated spec in a pending job with a fresh identifier.
func NewJob(spec *session.Spec) *Job {
	return &Job{
		ID:       uuid.NewString(),
		Spec:     spec,
		Status:   StatusPending,
		QueuedAt: time.Now().UTC(),
	}
}

// DisplayName returns the "Artist - Song" label used in queue listings.
func (j *Job) DisplayName() string {
	return fmt.Sprintf("%s - %s", j.Spec.Artist(), j.Spec.SongName())
}

// IsFinished reports whether the job reached a terminal status.
func (j *Job) IsFinished() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Duration returns elapsed execution time: zero before the job starts,
// time-so-far while running, and the final duration once finished.
func (j *Job) Duration() time.Duration {
	if j.StartedAt.IsZero() {
		return 0
	}
	end := j.CompletedAt
	if end.IsZero() {
		end = time.Now().UTC()
	}
	return end.Sub(j.StartedAt)
}
