package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"ptforge/internal/logging"
)

// settleDelay is how long the watcher waits after a folder appears before
// scanning it, so partially copied drops are not enqueued mid-transfer.
const settleDelay = 3 * time.Second

// watchLoop monitors the watch folder and enqueues any song or album
// folder dropped into it. Watch failures disable the monitor but never
// take the daemon down.
func (d *Daemon) watchLoop(ctx context.Context) {
	logger := logging.NewComponentLogger(d.logger, "watcher")
	watchDir := d.cfg.Paths.WatchDir

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("watch folder monitor disabled",
			logging.String("watch_dir", watchDir),
			logging.Error(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(watchDir); err != nil {
		logger.Error("watch folder monitor disabled",
			logging.String("watch_dir", watchDir),
			logging.Error(err))
		return
	}
	logger.Info("watching for dropped folders", logging.String("watch_dir", watchDir))

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			d.handleDrop(ctx, logger, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error", logging.Error(err))
		}
	}
}

func (d *Daemon) handleDrop(ctx context.Context, logger *slog.Logger, path string) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(settleDelay):
	}

	jobs, err := d.EnqueueFolder(ctx, AddRequest{Folder: path})
	if err != nil {
		logger.Warn("dropped folder not queued",
			logging.String("folder", path),
			logging.Error(err))
		if nerr := d.notifier.NotifyError(ctx, err, "watch folder"); nerr != nil {
			d.logger.Debug("error notification failed", logging.Error(nerr))
		}
		return
	}
	logger.Info("dropped folder queued",
		logging.String(logging.FieldEventType, "watch_enqueue"),
		logging.String("folder", path),
		logging.Int("job_count", len(jobs)))
}
