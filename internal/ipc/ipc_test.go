package ipc_test

import (
	"context"
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

type noopWorkflow struct{}

func (noopWorkflow) Launch(context.Context) error { return nil }
func (noopWorkflow) CreateSession(context.Context, string, int, int, string) error {
	return nil
}
func (noopWorkflow) ImportAudio(context.Context, []string) error  { return nil }
func (noopWorkflow) ImportMIDI(context.Context, []string) error   { return nil }
func (noopWorkflow) ImportTemplate(context.Context, string) error { return nil }
func (noopWorkflow) SaveSession(context.Context, string) error    { return nil }
func (noopWorkflow) CloseSession(context.Context) error           { return nil }

func TestIPCServerClient(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(dir, "out")
	cfg.Paths.LogDir = filepath.Join(dir, "log")
	cfg.Paths.LockPath = filepath.Join(dir, "ptforge.lock")
	cfg.Paths.WatchDir = ""
	cfg.History.Enabled = false

	logger := logging.NewNop()
	manager := queue.NewManager()
	exec := executor.New(noopWorkflow{}, logger)
	d, err := daemon.New(&cfg, logger, manager, exec, notifications.NewService(&cfg), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	stopped := make(chan struct{})
	socket := filepath.Join(dir, "ptforge.sock")
	srv, err := ipc.NewServer(ctx, socket, d, func() { close(stopped) }, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status.Running {
		t.Fatal("daemon loops not started, expected running=false")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("pid = %d", status.PID)
	}

	// Enqueue a folder through the socket.
	songDir := filepath.Join(dir, "Artist - Song")
	if err := os.MkdirAll(songDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(songDir, "take.wav"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	addResp, err := client.QueueAdd(ipc.QueueAddRequest{
		Folder:     songDir,
		SampleRate: 48000,
		BitDepth:   24,
	})
	if err != nil {
		t.Fatalf("QueueAdd failed: %v", err)
	}
	if len(addResp.Jobs) != 1 || addResp.Jobs[0].DisplayName != "Artist - Song" {
		t.Fatalf("add response = %+v", addResp.Jobs)
	}

	listResp, err := client.QueueList()
	if err != nil {
		t.Fatalf("QueueList failed: %v", err)
	}
	if len(listResp.Jobs) != 1 {
		t.Fatalf("expected 1 queued job, got %d", len(listResp.Jobs))
	}

	removeResp, err := client.QueueRemove(addResp.Jobs[0].ID)
	if err != nil {
		t.Fatalf("QueueRemove failed: %v", err)
	}
	if !removeResp.Removed {
		t.Fatal("pending job should have been removed")
	}

	if _, err := client.QueueRemove(""); err == nil {
		t.Fatal("empty id must error")
	}

	if _, err := client.QueueAdd(ipc.QueueAddRequest{Folder: filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("missing folder must error")
	}

	clearResp, err := client.QueueClear()
	if err != nil {
		t.Fatalf("QueueClear failed: %v", err)
	}
	if clearResp.Removed != 0 {
		t.Fatalf("expected empty queue, cleared %d", clearResp.Removed)
	}

	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if !notifyResp.Sent {
		t.Fatalf("noop notifier should report sent: %+v", notifyResp)
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stop response to be true")
	}
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop callback was not invoked")
	}
}
