package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ptforge/internal/config"
	"ptforge/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyJobCompleted(context.Background(), "Artist - Song", "", time.Minute); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func notifyServer(t *testing.T, got *captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		got.body = string(body)
		_ = r.Body.Close()
		w.WriteHeader(http.StatusOK)
	}))
}

func testConfig(url string) config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = url
	cfg.Notifications.RequestTimeout = 5
	cfg.Notifications.JobEvents = true
	cfg.Notifications.QueueEvents = true
	cfg.Notifications.Errors = true
	return cfg
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "job queued",
			notify: func(svc notifications.Service) error {
				return svc.NotifyJobQueued(context.Background(), "Artist - Song", 3)
			},
			expectTitle:   "ptforge - Job Queued",
			expectMessage: "Queued: Artist - Song (position 3)",
			expectTags:    "ptforge,job,queued",
		},
		{
			name: "job started",
			notify: func(svc notifications.Service) error {
				return svc.NotifyJobStarted(context.Background(), "Artist - Song")
			},
			expectTitle:   "ptforge - Session Build Started",
			expectMessage: "Building session: Artist - Song",
			expectTags:    "ptforge,job,started",
		},
		{
			name: "job completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyJobCompleted(context.Background(), "Artist - Song", "/sessions/Song.ptx", 90*time.Second)
			},
			expectTitle:    "ptforge - Session Complete",
			expectMessage:  "Session ready: Artist - Song\nFile: /sessions/Song.ptx\nTook: 1m30s",
			expectTags:     "ptforge,job,completed",
			expectPriority: "high",
		},
		{
			name: "job failed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyJobFailed(context.Background(), "Artist - Song", "New Session dialog did not appear")
			},
			expectTitle:    "ptforge - Session Failed",
			expectMessage:  "Session build failed: Artist - Song\nNew Session dialog did not appear",
			expectTags:     "ptforge,job,failed",
			expectPriority: "high",
		},
		{
			name: "queue completed clean",
			notify: func(svc notifications.Service) error {
				return svc.NotifyQueueCompleted(context.Background(), 4, 0, 10*time.Minute)
			},
			expectTitle:   "ptforge - Queue Complete",
			expectMessage: "Queue drained: 4 session(s) built in 10m0s",
			expectTags:    "ptforge,queue,completed",
		},
		{
			name: "queue completed with failures",
			notify: func(svc notifications.Service) error {
				return svc.NotifyQueueCompleted(context.Background(), 3, 1, 10*time.Minute)
			},
			expectTitle:   "ptforge - Queue Complete (with errors)",
			expectMessage: "Queue drained: 3 succeeded, 1 failed in 10m0s",
			expectTags:    "ptforge,queue,completed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got captured
			server := notifyServer(t, &got)
			defer server.Close()

			cfg := testConfig(server.URL)
			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			if got.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, got.body)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.JobEvents = false
	cfg.Notifications.QueueEvents = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifyJobStarted(ctx, "Artist - Song"); err != nil {
		t.Fatalf("suppressed job event: %v", err)
	}
	if err := svc.NotifyQueueCompleted(ctx, 1, 0, time.Minute); err != nil {
		t.Fatalf("suppressed queue event: %v", err)
	}
	if err := svc.NotifyError(ctx, io.EOF, "queue"); err != nil {
		t.Fatalf("suppressed error event: %v", err)
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
