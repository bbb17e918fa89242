package queue_test

import (
	"testing"
	"time"

	"ptforge/internal/queue"
)

func TestNewJobDefaults(t *testing.T) {
	job := newJob(t, "Fresh Cut")
	if job.Status != queue.StatusPending {
		t.Fatalf("status = %s, want pending", job.Status)
	}
	if job.Progress != 0 {
		t.Fatalf("progress = %d, want 0", job.Progress)
	}
	if job.ID == "" {
		t.Fatal("job needs an id")
	}
	if job.QueuedAt.IsZero() {
		t.Fatal("queued timestamp must be set at creation")
	}
	if job.IsFinished() {
		t.Fatal("pending job is not finished")
	}
}

func TestJobIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		job := newJob(t, "dup")
		if _, dup := seen[job.ID]; dup {
			t.Fatalf("duplicate job id %s", job.ID)
		}
		seen[job.ID] = struct{}{}
	}
}

func TestDisplayName(t *testing.T) {
	job := newJob(t, "Night Drive")
	if got := job.DisplayName(); got != "Artist - Night Drive" {
		t.Fatalf("DisplayName = %q", got)
	}
}

func TestDuration(t *testing.T) {
	job := newJob(t, "timing")
	if job.Duration() != 0 {
		t.Fatal("duration before start must be zero")
	}
	job.StartedAt = time.Now().UTC().Add(-2 * time.Second)
	if job.Duration() <= 0 {
		t.Fatal("running job should report elapsed time")
	}
	job.CompletedAt = job.StartedAt.Add(5 * time.Second)
	if got := job.Duration(); got != 5*time.Second {
		t.Fatalf("Duration = %v, want 5s", got)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Failed "); !ok || status != queue.StatusFailed {
		t.Fatalf("ParseStatus failed: %v %v", status, ok)
	}
	if _, ok := queue.ParseStatus("exploded"); ok {
		t.Fatal("unknown status must not parse")
	}
}
