package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ptforge/internal/config"
)

const userAgent = "ptforge/0.1.0"

// Service defines the notification surface exposed to the daemon and
// workflow components.
type Service interface {
	NotifyJobQueued(ctx context.Context, displayName string, position int) error
	NotifyJobStarted(ctx context.Context, displayName string) error
	NotifyJobCompleted(ctx context.Context, displayName, sessionFile string, duration time.Duration) error
	NotifyJobFailed(ctx context.Context, displayName, reason string) error
	NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		jobEvents:   cfg.Notifications.JobEvents,
		queueEvents: cfg.Notifications.QueueEvents,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	jobEvents   bool
	queueEvents bool
	errors      bool
}

func (n *ntfyService) NotifyJobQueued(ctx context.Context, displayName string, position int) error {
	if !n.jobEvents {
		return nil
	}
	data := payload{
		title:   "ptforge - Job Queued",
		message: fmt.Sprintf("Queued: %s (position %d)", strings.TrimSpace(displayName), position),
		tags:    []string{"ptforge", "job", "queued"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobStarted(ctx context.Context, displayName string) error {
	if !n.jobEvents {
		return nil
	}
	data := payload{
		title:   "ptforge - Session Build Started",
		message: fmt.Sprintf("Building session: %s", strings.TrimSpace(displayName)),
		tags:    []string{"ptforge", "job", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, displayName, sessionFile string, duration time.Duration) error {
	if !n.jobEvents {
		return nil
	}
	message := fmt.Sprintf("Session ready: %s", strings.TrimSpace(displayName))
	if sessionFile = strings.TrimSpace(sessionFile); sessionFile != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, sessionFile)
	}
	if duration > 0 {
		message = fmt.Sprintf("%s\nTook: %s", message, duration.Round(time.Second))
	}
	data := payload{
		title:    "ptforge - Session Complete",
		message:  message,
		tags:     []string{"ptforge", "job", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, displayName, reason string) error {
	if !n.jobEvents {
		return nil
	}
	message := fmt.Sprintf("Session build failed: %s", strings.TrimSpace(displayName))
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\n%s", message, reason)
	}
	data := payload{
		title:    "ptforge - Session Failed",
		message:  message,
		tags:     []string{"ptforge", "job", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	if !n.queueEvents {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var title, message string
	if failed == 0 {
		title = "ptforge - Queue Complete"
		message = fmt.Sprintf("Queue drained: %d session(s) built in %s", processed, duration)
	} else {
		title = "ptforge - Queue Complete (with errors)"
		message = fmt.Sprintf("Queue drained: %d succeeded, %d failed in %s", processed, failed, duration)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"ptforge", "queue", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "ptforge - Error",
		message:  builder.String(),
		tags:     []string{"ptforge", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "ptforge - Test",
		message:  "Notification system test",
		tags:     []string{"ptforge", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyJobQueued(context.Context, string, int) error { return nil }
func (noopService) NotifyJobStarted(context.Context, string) error     { return nil }
func (noopService) NotifyJobCompleted(context.Context, string, string, time.Duration) error {
	return nil
}
func (noopService) NotifyJobFailed(context.Context, string, string) error          { return nil }
func (noopService) NotifyQueueCompleted(context.Context, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
