package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ptforge/internal/config"
	"ptforge/internal/daemon"
	"ptforge/internal/executor"
	"ptforge/internal/ipc"
	"ptforge/internal/logging"
	"ptforge/internal/notifications"
	"ptforge/internal/queue"
)

type cliWorkflow struct{}

func (cliWorkflow) Launch(context.Context) error { return nil }
func (cliWorkflow) CreateSession(context.Context, string, int, int, string) error {
	return nil
}
func (cliWorkflow) ImportAudio(context.Context, []string) error  { return nil }
func (cliWorkflow) ImportMIDI(context.Context, []string) error   { return nil }
func (cliWorkflow) ImportTemplate(context.Context, string) error { return nil }
func (cliWorkflow) SaveSession(context.Context, string) error    { return nil }
func (cliWorkflow) CloseSession(context.Context) error           { return nil }

func writeTestConfig(t *testing.T, dir string) (string, string) {
	t.Helper()

	socket := filepath.Join(dir, "ptforge.sock")
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q
template_dir = %q
socket_path = %q
lock_path = %q
api_bind = ""

[history]
enabled = false
`,
		filepath.Join(dir, "sessions"),
		filepath.Join(dir, "logs"),
		filepath.Join(dir, "templates"),
		socket,
		filepath.Join(dir, "ptforge.lock"),
	)
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, socket
}

// startTestDaemon serves IPC on the configured socket without starting the
// consumer loops, which is all the queue subcommands need.
func startTestDaemon(t *testing.T, cfgPath, socket string) <-chan struct{} {
	t.Helper()

	cfg, _, _, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	logger := logging.NewNop()
	manager := queue.NewManager()
	exec := executor.New(cliWorkflow{}, logger)
	d, err := daemon.New(cfg, logger, manager, exec, notifications.NewService(cfg), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	stopped := make(chan struct{})
	srv, err := ipc.NewServer(ctx, socket, d, func() { close(stopped) }, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI socket test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(socket); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("socket never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return stopped
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestQueueLifecycleOverSocket(t *testing.T) {
	dir := t.TempDir()
	cfgPath, socket := writeTestConfig(t, dir)
	startTestDaemon(t, cfgPath, socket)

	out, err := runCommand(t, "-c", cfgPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("expected empty queue, got:\n%s", out)
	}

	songDir := filepath.Join(dir, "Nina Simone - Sinnerman")
	if err := os.MkdirAll(songDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(songDir, "take1.wav"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err = runCommand(t, "-c", cfgPath, "add", songDir, "--sample-rate", "44100", "--bit-depth", "16")
	if err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Queued Nina Simone - Sinnerman") {
		t.Fatalf("unexpected add output:\n%s", out)
	}

	out, err = runCommand(t, "-c", cfgPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Nina Simone - Sinnerman") || !strings.Contains(out, "pending") {
		t.Fatalf("job missing from listing:\n%s", out)
	}

	out, err = runCommand(t, "-c", cfgPath, "queue", "clear")
	if err != nil {
		t.Fatalf("queue clear: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Cleared 1 pending jobs") {
		t.Fatalf("unexpected clear output:\n%s", out)
	}
}

func TestQueueRemoveByPrefix(t *testing.T) {
	dir := t.TempDir()
	cfgPath, socket := writeTestConfig(t, dir)
	startTestDaemon(t, cfgPath, socket)

	songDir := filepath.Join(dir, "Artist - Song")
	if err := os.MkdirAll(songDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(songDir, "take.wav"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCommand(t, "-c", cfgPath, "add", songDir, "--sample-rate", "48000", "--bit-depth", "24"); err != nil {
		t.Fatalf("add: %v", err)
	}

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()
	list, err := client.QueueList()
	if err != nil || len(list.Jobs) != 1 {
		t.Fatalf("queue list via client: %v, %d jobs", err, len(list.Jobs))
	}
	prefix := list.Jobs[0].ID[:displayIDWidth]

	out, err := runCommand(t, "-c", cfgPath, "queue", "remove", prefix)
	if err != nil {
		t.Fatalf("queue remove: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Removed job "+prefix) {
		t.Fatalf("unexpected remove output:\n%s", out)
	}

	if out, err := runCommand(t, "-c", cfgPath, "queue", "remove", prefix); err == nil {
		t.Fatalf("removing a missing job should fail, got:\n%s", out)
	}
}

func TestStopCommandInvokesCallback(t *testing.T) {
	dir := t.TempDir()
	cfgPath, socket := writeTestConfig(t, dir)
	stopped := startTestDaemon(t, cfgPath, socket)

	out, err := runCommand(t, "-c", cfgPath, "stop")
	if err != nil {
		t.Fatalf("stop: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Daemon stopped") {
		t.Fatalf("unexpected stop output:\n%s", out)
	}
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop callback not invoked")
	}
}

func TestTestNotifyCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath, socket := writeTestConfig(t, dir)
	startTestDaemon(t, cfgPath, socket)

	out, err := runCommand(t, "-c", cfgPath, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Test notification sent") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestQueueCommandsWithoutDaemon(t *testing.T) {
	dir := t.TempDir()
	cfgPath, _ := writeTestConfig(t, dir)

	out, err := runCommand(t, "-c", cfgPath, "queue", "list")
	if err == nil {
		t.Fatalf("expected dial failure, got:\n%s", out)
	}
	if !strings.Contains(err.Error(), "ptforge run") {
		t.Fatalf("error should point at `ptforge run`: %v", err)
	}
}

func TestConfigInitValidateShow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	target := filepath.Join(dir, "config.toml")

	out, err := runCommand(t, "config", "init", "-p", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Wrote sample configuration to "+target) {
		t.Fatalf("unexpected init output:\n%s", out)
	}

	if _, err := runCommand(t, "config", "init", "-p", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
	if out, err := runCommand(t, "config", "init", "-p", target, "--overwrite"); err != nil {
		t.Fatalf("init --overwrite: %v\n%s", err, out)
	}

	out, err = runCommand(t, "-c", target, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output:\n%s", out)
	}

	out, err = runCommand(t, "-c", target, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	if !strings.Contains(out, "socket_path") || !strings.Contains(out, "log_level") {
		t.Fatalf("unexpected show output:\n%s", out)
	}
}

func TestStatusCommandReportsOffline(t *testing.T) {
	dir := t.TempDir()
	cfgPath, _ := writeTestConfig(t, dir)

	out, err := runCommand(t, "-c", cfgPath, "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Not running") {
		t.Fatalf("offline daemon should be reported:\n%s", out)
	}
	if !strings.Contains(out, "Queue unavailable") {
		t.Fatalf("offline queue should be reported:\n%s", out)
	}
}

func TestMatchJobID(t *testing.T) {
	jobs := []ipc.JobView{
		{ID: "aaaa1111"},
		{ID: "aaaa2222"},
		{ID: "bbbb3333"},
	}
	if _, err := matchJobID(jobs, "aaaa"); err == nil {
		t.Fatal("ambiguous prefix should error")
	}
	id, err := matchJobID(jobs, "bbbb")
	if err != nil || id != "bbbb3333" {
		t.Fatalf("prefix match failed: %q, %v", id, err)
	}
	if _, err := matchJobID(jobs, "zzzz"); err == nil {
		t.Fatal("unknown prefix should error")
	}
	if _, err := matchJobID(jobs, " "); err == nil {
		t.Fatal("blank id should error")
	}
}
