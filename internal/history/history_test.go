package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ptforge/internal/config"
	"ptforge/internal/history"
	"ptforge/internal/queue"
	"ptforge/internal/session"
)

func testStore(t *testing.T) *history.Store {
	t.Helper()
	cfg := config.Default()
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")

	store, err := history.Open(&cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func finishedJob(t *testing.T, status queue.Status) *queue.Job {
	t.Helper()
	spec, err := session.New(session.Params{
		SampleRate:  48000,
		BitDepth:    24,
		AudioFiles:  []string{"/takes/kick.wav"},
		OutputDir:   "/sessions/Artist/Song",
		SessionFile: "/sessions/Artist/Song/Song.ptx",
		Artist:      "Artist",
		SongName:    "Song",
	})
	if err != nil {
		t.Fatalf("spec: %v", err)
	}
	job := queue.NewJob(spec)
	job.Status = status
	job.StartedAt = time.Now().UTC().Add(-time.Minute)
	job.CompletedAt = time.Now().UTC()
	if status == queue.StatusFailed {
		job.ErrorMessage = "New Session dialog did not appear"
	}
	return job
}

func TestOpenDisabledReturnsNil(t *testing.T) {
	cfg := config.Default()
	cfg.History.Enabled = false

	store, err := history.Open(&cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store != nil {
		t.Fatal("disabled history must return a nil store")
	}
	// Nil stores are safe to use.
	if err := store.Archive(context.Background(), finishedJob(t, queue.StatusCompleted)); err != nil {
		t.Fatalf("nil archive: %v", err)
	}
	if _, err := store.Recent(context.Background(), 5); err != nil {
		t.Fatalf("nil recent: %v", err)
	}
}

func TestArchiveAndRecent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	completed := finishedJob(t, queue.StatusCompleted)
	failed := finishedJob(t, queue.StatusFailed)
	failed.CompletedAt = completed.CompletedAt.Add(time.Second)

	if err := store.Archive(ctx, completed); err != nil {
		t.Fatalf("archive completed: %v", err)
	}
	if err := store.Archive(ctx, failed); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	// Most recently completed first.
	if records[0].Status != queue.StatusFailed {
		t.Fatalf("order wrong: %+v", records)
	}
	if records[0].ErrorMessage == "" {
		t.Fatal("failed record should carry its error message")
	}
	if records[1].DisplayName() != "Artist - Song" {
		t.Fatalf("display name = %q", records[1].DisplayName())
	}
	if records[1].Duration() <= 0 {
		t.Fatalf("duration = %v", records[1].Duration())
	}
}

func TestArchiveRejectsRunningJob(t *testing.T) {
	store := testStore(t)
	job := finishedJob(t, queue.StatusCompleted)
	job.Status = queue.StatusRunning

	if err := store.Archive(context.Background(), job); err == nil {
		t.Fatal("running job must not be archivable")
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.Archive(ctx, finishedJob(t, queue.StatusCompleted)); err != nil {
			t.Fatalf("archive: %v", err)
		}
	}
	records, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d", len(records))
	}
}
