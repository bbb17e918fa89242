package protools

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ptforge/internal/config"
	"ptforge/internal/logging"
)

type recordedCall struct {
	name         string
	placeholders map[string]string
	retry        bool
}

type fakeExecutor struct {
	calls []recordedCall
	err   error
}

func (f *fakeExecutor) Execute(_ context.Context, name string, placeholders map[string]string, retry bool) (string, error) {
	f.calls = append(f.calls, recordedCall{name: name, placeholders: placeholders, retry: retry})
	if f.err != nil {
		return "", f.err
	}
	return "ok", nil
}

func newTestClient(t *testing.T, exec Executor) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.Automation.SaveSettleDelay = 0
	client := NewClient(&cfg, exec, logging.NewNop())
	client.sleep = func(time.Duration) {}
	return client
}

func TestCreateSessionPlaceholders(t *testing.T) {
	exec := &fakeExecutor{}
	client := newTestClient(t, exec)

	outputDir := filepath.Join(t.TempDir(), "out")
	if err := client.CreateSession(context.Background(), "My Song", 96000, 24, outputDir); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(exec.calls) != 1 || exec.calls[0].name != "create_session" {
		t.Fatalf("calls = %+v", exec.calls)
	}
	ph := exec.calls[0].placeholders
	if ph["session_name"] != "My Song" {
		t.Errorf("session_name = %q", ph["session_name"])
	}
	if ph["sample_rate_label"] != "96 kHz" {
		t.Errorf("sample_rate_label = %q", ph["sample_rate_label"])
	}
	if ph["bit_depth_label"] != "24-bit" {
		t.Errorf("bit_depth_label = %q", ph["bit_depth_label"])
	}
	if _, err := os.Stat(outputDir); err != nil {
		t.Errorf("output dir should be created: %v", err)
	}
}

func TestImportAudioUsesParentFolder(t *testing.T) {
	exec := &fakeExecutor{}
	client := newTestClient(t, exec)

	files := []string{"/takes/song/kick.wav", "/takes/song/snare.wav"}
	if err := client.ImportAudio(context.Background(), files); err != nil {
		t.Fatalf("import: %v", err)
	}
	ph := exec.calls[0].placeholders
	if ph["audio_folder_path"] != "/takes/song" {
		t.Fatalf("audio_folder_path = %q", ph["audio_folder_path"])
	}
}

func TestImportAudioRejectsEmptyList(t *testing.T) {
	client := newTestClient(t, &fakeExecutor{})
	if err := client.ImportAudio(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty file list")
	}
	if err := client.ImportMIDI(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty MIDI list")
	}
}

func TestImportTemplateRequiresExistingFile(t *testing.T) {
	exec := &fakeExecutor{}
	client := newTestClient(t, exec)

	missing := filepath.Join(t.TempDir(), "missing.ptx")
	if err := client.ImportTemplate(context.Background(), missing); err == nil {
		t.Fatal("expected error for missing template")
	}
	if len(exec.calls) != 0 {
		t.Fatal("no automation call should be issued for a missing template")
	}

	tpl := filepath.Join(t.TempDir(), "band.ptx")
	if err := os.WriteFile(tpl, []byte("ptx"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := client.ImportTemplate(context.Background(), tpl); err != nil {
		t.Fatalf("import: %v", err)
	}
}

func TestSaveSessionVerifiesFile(t *testing.T) {
	exec := &fakeExecutor{}
	client := newTestClient(t, exec)

	dir := t.TempDir()
	sessionFile := filepath.Join(dir, "Take One.ptx")

	// Script "succeeds" but the file never shows up.
	if err := client.SaveSession(context.Background(), sessionFile); err == nil {
		t.Fatal("expected error when session file missing")
	}

	if err := os.WriteFile(sessionFile, []byte("ptx"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := client.SaveSession(context.Background(), sessionFile); err != nil {
		t.Fatalf("save with existing file: %v", err)
	}
	ph := exec.calls[len(exec.calls)-1].placeholders
	if ph["session_name"] != "Take One" {
		t.Fatalf("session_name = %q", ph["session_name"])
	}
	if ph["save_path"] != dir {
		t.Fatalf("save_path = %q", ph["save_path"])
	}
}

func TestSaveSessionAcceptsLegacyExtension(t *testing.T) {
	exec := &fakeExecutor{}
	client := newTestClient(t, exec)

	dir := t.TempDir()
	sessionFile := filepath.Join(dir, "Old School.ptx")
	if err := os.WriteFile(filepath.Join(dir, "Old School.ptf"), []byte("ptf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := client.SaveSession(context.Background(), sessionFile); err != nil {
		t.Fatalf("legacy extension should satisfy verification: %v", err)
	}
}

func TestLabels(t *testing.T) {
	cases := map[int]string{
		44100:  "44.1 kHz",
		48000:  "48 kHz",
		88200:  "88.2 kHz",
		96000:  "96 kHz",
		176400: "176.4 kHz",
		192000: "192 kHz",
	}
	for rate, want := range cases {
		if got := SampleRateLabel(rate); got != want {
			t.Errorf("SampleRateLabel(%d) = %q, want %q", rate, got, want)
		}
	}
	if got := BitDepthLabel(32); got != "32-bit float" {
		t.Errorf("BitDepthLabel(32) = %q", got)
	}
	if got := BitDepthLabel(16); got != "16-bit" {
		t.Errorf("BitDepthLabel(16) = %q", got)
	}
}
