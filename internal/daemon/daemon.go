package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"ptforge/internal/audioprobe"
	"ptforge/internal/config"
	"ptforge/internal/executor"
	"ptforge/internal/history"
	"ptforge/internal/logging"
	"ptforge/internal/notifications"
	"ptforge/internal/pathutil"
	"ptforge/internal/queue"
	"ptforge/internal/scanner"
	"ptforge/internal/session"
)

// Defaults applied when a folder's audio cannot be probed.
const (
	defaultSampleRate = 48000
	defaultBitDepth   = 24
)

// Daemon coordinates the serial consumer loop, the watch-folder monitor,
// and the control surfaces, and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	manager  *queue.Manager
	exec     *executor.Executor
	notifier notifications.Service
	history  *history.Store
	prober   *audioprobe.Prober

	lockPath  string
	lock      *flock.Flock
	runID     string
	startedAt time.Time

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu          sync.Mutex
	batchActive bool
	batchStart  time.Time
	processed   int
	failedCount int
}

// Status is a point-in-time snapshot of daemon state.
type Status struct {
	Running     bool
	PID         int
	RunID       string
	StartedAt   time.Time
	LockPath    string
	QueueSize   int
	Current     *JobView
	HistoryPath string
}

// New constructs a daemon with initialized dependencies. The history store
// may be nil when archiving is disabled.
func New(cfg *config.Config, logger *slog.Logger, manager *queue.Manager, exec *executor.Executor, notifier notifications.Service, store *history.Store) (*Daemon, error) {
	if cfg == nil || manager == nil || exec == nil {
		return nil, errors.New("daemon requires config, queue manager, and executor")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	lockPath := strings.TrimSpace(cfg.Paths.LockPath)
	if lockPath == "" {
		lockPath = filepath.Join(cfg.Paths.LogDir, "ptforge.lock")
	}

	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		manager:  manager,
		exec:     exec,
		notifier: notifier,
		history:  store,
		prober:   audioprobe.New(cfg.FFprobeBinary()),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		runID:    uuid.NewString(),
	}, nil
}

// Start acquires the single-instance lock and launches the consumer loop
// and, when configured, the watch-folder monitor.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another ptforge daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.startedAt = time.Now().UTC()
	d.running.Store(true)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.consumeLoop(d.ctx)
	}()

	if strings.TrimSpace(d.cfg.Paths.WatchDir) != "" {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.watchLoop(d.ctx)
		}()
	}

	d.logger.Info("daemon started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.String("run_id", d.runID),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop requests a graceful shutdown: the consumer finishes the job in
// flight, stops between jobs, and the lock is released.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stop"),
		logging.String("run_id", d.runID))
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	return d.history.Close()
}

// Running reports whether the daemon loops are active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status returns a snapshot of daemon runtime state.
func (d *Daemon) Status() Status {
	status := Status{
		Running:     d.running.Load(),
		PID:         os.Getpid(),
		RunID:       d.runID,
		StartedAt:   d.startedAt,
		LockPath:    d.lockPath,
		QueueSize:   d.manager.Size(),
		HistoryPath: d.history.Path(),
	}
	if current := d.manager.GetCurrent(); current != nil {
		view := ViewOf(current)
		status.Current = &view
	}
	return status
}

// ListJobs returns the current job (if any) followed by pending jobs.
func (d *Daemon) ListJobs() []JobView {
	jobs := d.manager.AllJobs()
	views := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, ViewOf(job))
	}
	return views
}

// RemoveJob removes a pending job. The executing job cannot be removed.
func (d *Daemon) RemoveJob(id string) bool {
	removed := d.manager.Remove(id)
	if removed {
		d.logger.Info("job removed",
			logging.String(logging.FieldEventType, "queue_remove"),
			logging.String(logging.FieldJobID, id))
	}
	return removed
}

// ClearQueue drops every pending job and returns the removed count.
func (d *Daemon) ClearQueue() int {
	removed := d.manager.Clear()
	d.logger.Info("queue cleared",
		logging.String(logging.FieldEventType, "queue_clear"),
		logging.Int("removed_count", removed))
	return removed
}

// TestNotification pushes a test message through the notifier.
func (d *Daemon) TestNotification(ctx context.Context) error {
	return d.notifier.TestNotification(ctx)
}

// AddRequest describes one folder to enqueue. Zero-valued fields are
// derived: Song from the folder name, Artist from an "Artist - Song"
// folder name, sample rate and bit depth from probing the audio files.
type AddRequest struct {
	Folder     string
	Artist     string
	Song       string
	Project    string
	SampleRate int
	BitDepth   int
	Template   string
}

// EnqueueFolder scans a dropped folder and enqueues one job per song.
// A folder with no importable files of its own but song subfolders with
// some is treated as an album; every song then shares the folder's name
// as project.
func (d *Daemon) EnqueueFolder(ctx context.Context, req AddRequest) ([]*queue.Job, error) {
	folder := strings.TrimSpace(req.Folder)
	if folder == "" {
		return nil, errors.New("folder is required")
	}

	album, err := scanner.IsAlbumFolder(folder)
	if err != nil {
		return nil, err
	}

	if !album {
		song, err := scanner.ScanSongFolder(folder)
		if err != nil {
			return nil, err
		}
		if song.IsEmpty() {
			return nil, fmt.Errorf("no importable audio or MIDI files in %s", folder)
		}
		job, err := d.enqueueSong(ctx, song, req)
		if err != nil {
			return nil, err
		}
		return []*queue.Job{job}, nil
	}

	songs, err := scanner.ScanAlbumFolder(folder)
	if err != nil {
		return nil, err
	}
	project := req.Project
	if project == "" {
		project = filepath.Base(folder)
	}

	jobs := make([]*queue.Job, 0, len(songs))
	for _, song := range songs {
		songReq := req
		songReq.Project = project
		songReq.Song = ""
		job, err := d.enqueueSong(ctx, song, songReq)
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (d *Daemon) enqueueSong(ctx context.Context, folder scanner.SongFolder, req AddRequest) (*queue.Job, error) {
	artist, songName := deriveNames(folder.Name, req.Artist, req.Song)

	rate, depth := req.SampleRate, req.BitDepth
	if (rate == 0 || depth == 0) && len(folder.AudioFiles) > 0 {
		probedRate, probedDepth, err := d.prober.CheckConsistency(ctx, folder.AudioFiles)
		if err != nil {
			if errors.Is(err, audioprobe.ErrSampleRateMismatch) {
				return nil, err
			}
			d.logger.Warn("audio probe failed, using defaults",
				logging.String("folder", folder.Path),
				logging.Error(err))
		} else {
			if rate == 0 {
				rate = probedRate
			}
			if depth == 0 {
				depth = probedDepth
			}
		}
	}
	if rate == 0 {
		rate = defaultSampleRate
	}
	if depth == 0 {
		depth = defaultBitDepth
	}

	layout, err := pathutil.Resolve(d.cfg.Paths.OutputDir, artist, songName, req.Project)
	if err != nil {
		return nil, err
	}
	outputDir := pathutil.EnsureUnique(layout.OutputDir)
	sessionFile := filepath.Join(outputDir, filepath.Base(layout.SessionFile))

	spec, err := session.New(session.Params{
		SampleRate:   rate,
		BitDepth:     depth,
		AudioFiles:   folder.AudioFiles,
		MIDIFiles:    folder.MIDIFiles,
		OutputDir:    outputDir,
		SessionFile:  sessionFile,
		Artist:       artist,
		SongName:     songName,
		ProjectName:  req.Project,
		TemplatePath: d.resolveTemplate(req.Template),
	})
	if err != nil {
		return nil, err
	}

	job := queue.NewJob(spec)
	d.manager.Add(job)
	position := d.manager.Size()
	d.logger.Info("job queued",
		logging.String(logging.FieldEventType, "job_queued"),
		logging.String(logging.FieldJobID, job.ID),
		logging.String("display_name", job.DisplayName()),
		logging.Int("position", position))
	if err := d.notifier.NotifyJobQueued(ctx, job.DisplayName(), position); err != nil {
		d.logger.Debug("queued notification failed", logging.Error(err))
	}
	return job, nil
}

// deriveNames resolves artist and song, falling back to an
// "Artist - Song" folder naming convention.
func deriveNames(folderName, artist, song string) (string, string) {
	artist = strings.TrimSpace(artist)
	song = strings.TrimSpace(song)
	if artist != "" && song != "" {
		return artist, song
	}

	if parts := strings.SplitN(folderName, " - ", 2); len(parts) == 2 {
		if artist == "" {
			artist = strings.TrimSpace(parts[0])
		}
		if song == "" {
			song = strings.TrimSpace(parts[1])
		}
	}
	if song == "" {
		song = strings.TrimSpace(folderName)
	}
	if artist == "" {
		artist = "Unknown Artist"
	}
	return artist, song
}

func (d *Daemon) resolveTemplate(template string) string {
	template = strings.TrimSpace(template)
	if template == "" {
		return ""
	}
	if filepath.IsAbs(template) {
		return template
	}
	return filepath.Join(d.cfg.Paths.TemplateDir, template)
}

// consumeLoop is the single consumer: it drains the queue serially and
// sleeps while it is empty. Stop requests take effect between jobs; the
// job in flight always runs to its own completion or failure.
func (d *Daemon) consumeLoop(ctx context.Context) {
	poll := time.Duration(d.cfg.Workflow.QueuePollInterval) * time.Second
	if poll <= 0 {
		poll = time.Second
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job := d.manager.GetNext()
		if job == nil {
			d.finishBatch(ctx)
			select {
			case <-ctx.Done():
				return
			case <-time.After(poll):
			}
			continue
		}

		d.mu.Lock()
		if !d.batchActive {
			d.batchActive = true
			d.batchStart = time.Now().UTC()
			d.processed = 0
			d.failedCount = 0
		}
		d.mu.Unlock()

		d.runJob(ctx, job)
	}
}

func (d *Daemon) runJob(ctx context.Context, job *queue.Job) {
	// The job in flight survives a stop request, so execution gets a
	// context that outlives ctx cancellation.
	execCtx := context.WithoutCancel(ctx)

	if err := d.notifier.NotifyJobStarted(execCtx, job.DisplayName()); err != nil {
		d.logger.Debug("start notification failed", logging.Error(err))
	}

	err := d.exec.Execute(execCtx, job)

	d.mu.Lock()
	if err != nil {
		d.failedCount++
	} else {
		d.processed++
	}
	d.mu.Unlock()

	if err != nil {
		d.manager.FailCurrent(job.ErrorMessage)
		if nerr := d.notifier.NotifyJobFailed(execCtx, job.DisplayName(), job.ErrorMessage); nerr != nil {
			d.logger.Debug("failure notification failed", logging.Error(nerr))
		}
	} else {
		d.manager.CompleteCurrent()
		if nerr := d.notifier.NotifyJobCompleted(execCtx, job.DisplayName(), job.Spec.SessionFile(), job.Duration()); nerr != nil {
			d.logger.Debug("completion notification failed", logging.Error(nerr))
		}
	}

	if aerr := d.history.Archive(execCtx, job); aerr != nil {
		d.logger.Warn("history archive failed",
			logging.String(logging.FieldJobID, job.ID),
			logging.Error(aerr))
	}
}

func (d *Daemon) finishBatch(ctx context.Context) {
	d.mu.Lock()
	if !d.batchActive {
		d.mu.Unlock()
		return
	}
	processed, failed := d.processed, d.failedCount
	elapsed := time.Since(d.batchStart)
	d.batchActive = false
	d.mu.Unlock()

	d.logger.Info("queue drained",
		logging.String(logging.FieldEventType, "queue_complete"),
		logging.Int("processed", processed),
		logging.Int("failed", failed),
		logging.Duration("elapsed", elapsed))
	if err := d.notifier.NotifyQueueCompleted(context.WithoutCancel(ctx), processed, failed, elapsed); err != nil {
		d.logger.Debug("queue notification failed", logging.Error(err))
	}
}
