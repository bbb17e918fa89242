package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ptforge/internal/logging"
	"ptforge/internal/protools"
	"ptforge/internal/queue"
	"ptforge/internal/services"
)

// Cumulative progress checkpoints for the nine workflow steps. Skipped
// steps still report their checkpoint so progress reaches every value in
// order regardless of session content.
const (
	progressValidate       = 5
	progressCreateDir      = 10
	progressLaunch         = 20
	progressCreateSession  = 30
	progressImportAudio    = 50
	progressImportMIDI     = 70
	progressImportTemplate = 85
	progressSave           = 95
	progressComplete       = 100
)

// ProgressFunc receives step progress updates: the cumulative percentage
// and a human-readable description. Invoked synchronously on the consumer
// goroutine; it must not block.
type ProgressFunc func(percent int, message string)

// Option configures the executor.
type Option func(*Executor)

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Executor) {
		e.progress = fn
	}
}

// Executor drives one job through the nine-step session build workflow.
type Executor struct {
	workflow protools.Workflow
	progress ProgressFunc
	logger   *slog.Logger
}

// New constructs an executor over the given workflow implementation.
func New(workflow protools.Workflow, logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		workflow: workflow,
		logger:   logging.NewComponentLogger(logger, "executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the complete workflow, mutating the job's status, progress,
// and timestamps. On any step failure the remaining steps are skipped, a
// best-effort session close runs, and the job is left Failed with the
// original failure message. The job is never left Running.
func (e *Executor) Execute(ctx context.Context, job *queue.Job) error {
	if job.Status != queue.StatusPending {
		return fmt.Errorf("job %s is %s, expected pending", job.ID, job.Status)
	}

	ctx = logging.WithJob(ctx, job.ID)
	logger := logging.WithContext(ctx, e.logger)

	job.Status = queue.StatusRunning
	job.StartedAt = time.Now().UTC()
	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("display_name", job.DisplayName()),
		logging.String("session_file", job.Spec.SessionFile()),
	)

	steps := []func(context.Context, *queue.Job) error{
		e.stepValidate,
		e.stepCreateDir,
		e.stepLaunch,
		e.stepCreateSession,
		e.stepImportAudio,
		e.stepImportMIDI,
		e.stepImportTemplate,
		e.stepSave,
		e.stepComplete,
	}
	for _, step := range steps {
		if err := step(ctx, job); err != nil {
			e.failJob(ctx, logger, job, err)
			return fmt.Errorf("job execution failed: %w", err)
		}
	}

	job.Status = queue.StatusCompleted
	job.CompletedAt = time.Now().UTC()
	logger.Info("job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.Duration("elapsed", job.Duration()),
	)
	return nil
}

// Step 1: re-check that every referenced file still exists on disk. No
// Pro Tools interaction happens when validation fails.
func (e *Executor) stepValidate(ctx context.Context, job *queue.Job) error {
	e.updateProgress(ctx, job, progressValidate, "Validating session specification")

	for _, file := range job.Spec.AudioFiles() {
		if _, err := os.Stat(file); err != nil {
			return services.Wrap(services.ErrValidation, "validate", "",
				fmt.Sprintf("audio file not found: %s", file), nil)
		}
	}
	for _, file := range job.Spec.MIDIFiles() {
		if _, err := os.Stat(file); err != nil {
			return services.Wrap(services.ErrValidation, "validate", "",
				fmt.Sprintf("MIDI file not found: %s", file), nil)
		}
	}
	if job.Spec.HasTemplate() {
		if _, err := os.Stat(job.Spec.TemplatePath()); err != nil {
			return services.Wrap(services.ErrValidation, "validate", "",
				fmt.Sprintf("template file not found: %s", job.Spec.TemplatePath()), nil)
		}
	}
	return nil
}

// Step 2: create the output directory tree.
func (e *Executor) stepCreateDir(ctx context.Context, job *queue.Job) error {
	e.updateProgress(ctx, job, progressCreateDir, "Creating output directory")
	if err := os.MkdirAll(job.Spec.OutputDir(), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "create directory", "",
			fmt.Sprintf("failed to create output directory: %v", err), nil)
	}
	return nil
}

// Step 3: launch Pro Tools and wait for the Dashboard.
func (e *Executor) stepLaunch(ctx context.Context, job *queue.Job) error {
	e.updateProgress(ctx, job, progressLaunch, "Launching Pro Tools")
	return e.workflow.Launch(services.WithStep(ctx, "launch"))
}

// Step 4: create the session with the spec's audio settings.
func (e *Executor) stepCreateSession(ctx context.Context, job *queue.Job) error {
	e.updateProgress(ctx, job, progressCreateSession,
		fmt.Sprintf("Creating session: %s", job.Spec.SessionName()))
	return e.workflow.CreateSession(
		services.WithStep(ctx, "create session"),
		job.Spec.SessionName(),
		job.Spec.SampleRate(),
		job.Spec.BitDepth(),
		job.Spec.OutputDir(),
	)
}

// Step 5: import audio, skipped for MIDI-only sessions.
func (e *Executor) stepImportAudio(ctx context.Context, job *queue.Job) error {
	if !job.Spec.HasAudio() {
		e.updateProgress(ctx, job, progressImportAudio, "Skipping audio import (no audio files)")
		return nil
	}
	e.updateProgress(ctx, job, progressImportAudio,
		fmt.Sprintf("Importing %d audio file(s)", len(job.Spec.AudioFiles())))
	return e.workflow.ImportAudio(services.WithStep(ctx, "import audio"), job.Spec.AudioFiles())
}

// Step 6: import MIDI, skipped when the spec has none.
func (e *Executor) stepImportMIDI(ctx context.Context, job *queue.Job) error {
	if !job.Spec.HasMIDI() {
		e.updateProgress(ctx, job, progressImportMIDI, "Skipping MIDI import (no MIDI files)")
		return nil
	}
	e.updateProgress(ctx, job, progressImportMIDI,
		fmt.Sprintf("Importing %d MIDI file(s)", len(job.Spec.MIDIFiles())))
	return e.workflow.ImportMIDI(services.WithStep(ctx, "import MIDI"), job.Spec.MIDIFiles())
}

// Step 7: import template session data, skipped when no template is set.
func (e *Executor) stepImportTemplate(ctx context.Context, job *queue.Job) error {
	if !job.Spec.HasTemplate() {
		e.updateProgress(ctx, job, progressImportTemplate, "Skipping template import (no template)")
		return nil
	}
	e.updateProgress(ctx, job, progressImportTemplate,
		fmt.Sprintf("Importing template: %s", filepath.Base(job.Spec.TemplatePath())))
	return e.workflow.ImportTemplate(services.WithStep(ctx, "import template"), job.Spec.TemplatePath())
}

// Step 8: save the session to its final path.
func (e *Executor) stepSave(ctx context.Context, job *queue.Job) error {
	e.updateProgress(ctx, job, progressSave, "Saving session")
	return e.workflow.SaveSession(services.WithStep(ctx, "save"), job.Spec.SessionFile())
}

// Step 9: close the session and finish.
func (e *Executor) stepComplete(ctx context.Context, job *queue.Job) error {
	e.updateProgress(ctx, job, progressComplete, "Job complete")
	return e.workflow.CloseSession(services.WithStep(ctx, "close"))
}

func (e *Executor) failJob(ctx context.Context, logger *slog.Logger, job *queue.Job, stepErr error) {
	job.Status = queue.StatusFailed
	job.ErrorMessage = stepErr.Error()
	job.CompletedAt = time.Now().UTC()

	logger.Error("job failed",
		logging.String(logging.FieldEventType, "job_failure"),
		logging.Int("progress", job.Progress),
		logging.Error(stepErr),
	)

	// Best-effort cleanup so the next job starts from a closed session.
	// The original failure is what gets reported.
	if err := e.workflow.CloseSession(services.WithStep(ctx, "cleanup")); err != nil {
		logger.Debug("cleanup close failed", logging.Error(err))
	}
}

func (e *Executor) updateProgress(ctx context.Context, job *queue.Job, percent int, message string) {
	job.Progress = percent
	logging.WithContext(ctx, e.logger).Debug("progress",
		logging.Int("percent", percent),
		logging.String("message", message),
	)
	if e.progress != nil {
		e.progress(percent, message)
	}
}
