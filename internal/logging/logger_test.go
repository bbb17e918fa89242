package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"ptforge/internal/services"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestConsoleHandlerRendersSubject(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	handler := &consoleHandler{writer: &buf, level: lvl}
	logger := slog.New(handler).With(
		String(FieldComponent, "executor"),
		String(FieldJobID, "abc123-0000"),
		String(FieldStep, "save"),
	)

	logger.Info("step started", Int("percent", 95))

	out := buf.String()
	for _, want := range []string{"INF", "[executor]", "job abc123 (save)", "step started", "percent: 95"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(&consoleHandler{writer: &buf, level: lvl})

	ctx := services.WithJobID(context.Background(), "job-1")
	ctx = services.WithStep(ctx, "launch")
	WithContext(ctx, logger).Info("hello")

	out := buf.String()
	if !strings.Contains(out, "job job (launch)") && !strings.Contains(out, "launch") {
		t.Fatalf("expected context fields in output, got %q", out)
	}
}

func TestFormatSubject(t *testing.T) {
	if got := FormatSubject("", ""); got != "" {
		t.Fatalf("empty subject should be empty, got %q", got)
	}
	if got := FormatSubject("deadbeef-1234", "import audio"); got != "job deadbeef (import audio)" {
		t.Fatalf("unexpected subject %q", got)
	}
}
