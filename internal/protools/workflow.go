package protools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ptforge/internal/config"
	"ptforge/internal/logging"
	"ptforge/internal/services"
)

// Workflow is the fixed capability set the job executor drives. A test
// double satisfies it without a live Pro Tools process.
type Workflow interface {
	// Launch starts Pro Tools and waits for the Dashboard window.
	Launch(ctx context.Context) error
	// CreateSession creates a new session with explicit audio settings.
	CreateSession(ctx context.Context, name string, sampleRate, bitDepth int, outputDir string) error
	// ImportAudio imports audio files with Apply SRC disabled.
	ImportAudio(ctx context.Context, files []string) error
	// ImportMIDI imports MIDI files with tempo and key import enabled.
	ImportMIDI(ctx context.Context, files []string) error
	// ImportTemplate imports session data from a template with Apply SRC disabled.
	ImportTemplate(ctx context.Context, templatePath string) error
	// SaveSession saves the open session to the given file path.
	SaveSession(ctx context.Context, sessionFile string) error
	// CloseSession closes the frontmost session.
	CloseSession(ctx context.Context) error
}

// Executor runs one named automation operation. Satisfied by
// automation.Gateway.
type Executor interface {
	Execute(ctx context.Context, name string, placeholders map[string]string, retry bool) (string, error)
}

// Client implements Workflow over the automation gateway. Operations are
// stateless between calls; all session state lives in Pro Tools itself.
type Client struct {
	cfg    *config.Config
	exec   Executor
	logger *slog.Logger
	sleep  func(time.Duration)
}

// NewClient builds the live Pro Tools workflow.
func NewClient(cfg *config.Config, exec Executor, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		exec:   exec,
		logger: logging.NewComponentLogger(logger, "protools"),
		sleep:  time.Sleep,
	}
}

func (c *Client) Launch(ctx context.Context) error {
	_, err := c.exec.Execute(ctx, "launch_protools", map[string]string{
		"window_timeout": strconv.Itoa(c.cfg.Automation.WindowTimeout),
	}, true)
	return err
}

func (c *Client) CreateSession(ctx context.Context, name string, sampleRate, bitDepth int, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "protools", "create session",
			fmt.Sprintf("create output directory: %v", err), nil)
	}
	_, err := c.exec.Execute(ctx, "create_session", map[string]string{
		"session_name":      name,
		"sample_rate":       strconv.Itoa(sampleRate),
		"sample_rate_label": SampleRateLabel(sampleRate),
		"bit_depth":         strconv.Itoa(bitDepth),
		"bit_depth_label":   BitDepthLabel(bitDepth),
		"window_timeout":    strconv.Itoa(c.cfg.Automation.WindowTimeout),
	}, true)
	return err
}

func (c *Client) ImportAudio(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return errors.New("no audio files to import")
	}
	// All files for one session live in the same folder; the import dialog
	// is pointed at the folder rather than driven per file.
	_, err := c.exec.Execute(ctx, "import_audio", map[string]string{
		"audio_folder_path": filepath.Dir(files[0]),
		"dialog_wait":       formatSeconds(c.cfg.Automation.DialogWait),
		"import_timeout":    strconv.Itoa(c.cfg.Automation.ImportTimeout),
	}, true)
	return err
}

func (c *Client) ImportMIDI(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return errors.New("no MIDI files to import")
	}
	_, err := c.exec.Execute(ctx, "import_midi", map[string]string{
		"midi_folder_path": filepath.Dir(files[0]),
		"dialog_wait":      formatSeconds(c.cfg.Automation.DialogWait),
		"import_timeout":   strconv.Itoa(c.cfg.Automation.ImportTimeout),
	}, true)
	return err
}

func (c *Client) ImportTemplate(ctx context.Context, templatePath string) error {
	if _, err := os.Stat(templatePath); err != nil {
		return services.Wrap(services.ErrNotFound, "protools", "import template",
			fmt.Sprintf("template file not found: %s", templatePath), nil)
	}
	_, err := c.exec.Execute(ctx, "import_template", map[string]string{
		"template_posix_path": templatePath,
		"dialog_wait":         formatSeconds(c.cfg.Automation.DialogWait),
		"import_timeout":      strconv.Itoa(c.cfg.Automation.ImportTimeout),
	}, true)
	return err
}

func (c *Client) SaveSession(ctx context.Context, sessionFile string) error {
	name := strings.TrimSuffix(filepath.Base(sessionFile), filepath.Ext(sessionFile))
	_, err := c.exec.Execute(ctx, "save_session_as", map[string]string{
		"save_path":    filepath.Dir(sessionFile),
		"session_name": name,
		"dialog_wait":  formatSeconds(c.cfg.Automation.DialogWait),
	}, true)
	if err != nil {
		return err
	}

	// Pro Tools writes the session file shortly after the dialog closes.
	if settle := c.cfg.Automation.SaveSettleDelay; settle > 0 {
		c.sleep(time.Duration(settle * float64(time.Second)))
	}
	if _, statErr := os.Stat(sessionFile); statErr == nil {
		return nil
	}
	// Older Pro Tools versions write .ptf instead of .ptx.
	ptf := strings.TrimSuffix(sessionFile, filepath.Ext(sessionFile)) + ".ptf"
	if _, statErr := os.Stat(ptf); statErr == nil {
		return nil
	}
	return services.Wrap(services.ErrExternalTool, "protools", "save session",
		fmt.Sprintf("session file was not created at %s", sessionFile), nil)
}

func (c *Client) CloseSession(ctx context.Context) error {
	_, err := c.exec.Execute(ctx, "close_session", nil, true)
	return err
}

// SampleRateLabel renders a sample rate the way the Dashboard menu does.
func SampleRateLabel(rate int) string {
	switch rate {
	case 44100:
		return "44.1 kHz"
	case 48000:
		return "48 kHz"
	case 88200:
		return "88.2 kHz"
	case 96000:
		return "96 kHz"
	case 176400:
		return "176.4 kHz"
	case 192000:
		return "192 kHz"
	default:
		return fmt.Sprintf("%d Hz", rate)
	}
}

// BitDepthLabel renders a bit depth the way the Dashboard menu does.
func BitDepthLabel(depth int) string {
	if depth == 32 {
		return "32-bit float"
	}
	return fmt.Sprintf("%d-bit", depth)
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}
