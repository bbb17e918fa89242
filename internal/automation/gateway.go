package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"ptforge/internal/config"
	"ptforge/internal/logging"
	"ptforge/internal/services"
)

// Runner abstracts the osascript process call for testability.
type Runner interface {
	Run(ctx context.Context, binary string, script string) (stdout string, stderr string, err error)
}

// Option configures the gateway.
type Option func(*Gateway)

// WithRunner injects a custom runner (primarily for tests).
func WithRunner(r Runner) Option {
	return func(g *Gateway) {
		if r != nil {
			g.runner = r
		}
	}
}

// WithSleeper replaces the backoff sleep (tests use a recording fake).
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(g *Gateway) {
		if sleep != nil {
			g.sleep = sleep
		}
	}
}

// Gateway executes named AppleScript operations against Pro Tools with a
// per-call timeout and exponential-backoff retry. Failures are classified
// before any retry: timing failures burn attempts, logic failures
// propagate immediately.
type Gateway struct {
	binary      string
	timeout     time.Duration
	maxAttempts int
	backoff     ExponentialBackoff
	runner      Runner
	sleep       func(context.Context, time.Duration) error
	logger      *slog.Logger
}

// NewGateway constructs a gateway from automation config.
func NewGateway(cfg *config.Config, logger *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		binary:      cfg.OsascriptBinary(),
		timeout:     time.Duration(cfg.Automation.ScriptTimeout) * time.Second,
		maxAttempts: cfg.Automation.RetryAttempts,
		backoff:     ExponentialBackoff{Base: time.Duration(cfg.Automation.RetryBaseDelay * float64(time.Second))},
		runner:      osascriptRunner{},
		sleep:       sleepContext,
		logger:      logging.NewComponentLogger(logger, "automation"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Execute loads the named operation, substitutes placeholders, and issues
// the call. With retry enabled, failing attempts are classified and
// retried with exponential backoff until the attempt budget is exhausted.
func (g *Gateway) Execute(ctx context.Context, name string, placeholders map[string]string, retry bool) (string, error) {
	script, err := LoadScript(name, placeholders)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "automation", name, err.Error(), nil)
	}
	if !retry {
		return g.executeOnce(ctx, name, script)
	}
	return g.executeWithRetry(ctx, name, script)
}

func (g *Gateway) executeOnce(ctx context.Context, name, script string) (string, error) {
	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	stdout, stderr, err := g.runner.Run(callCtx, g.binary, script)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "automation", name,
				fmt.Sprintf("script timed out after %s", g.timeout), nil)
		}
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = err.Error()
		}
		return "", services.Wrap(services.ErrExternalTool, "automation", name, detail, nil)
	}

	g.logger.Debug("script succeeded",
		logging.String("script", name),
		logging.Duration("elapsed", time.Since(start)),
	)
	output := strings.TrimSpace(stdout)
	if output == "" {
		output = "ok"
	}
	return output, nil
}

func (g *Gateway) executeWithRetry(ctx context.Context, name, script string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		output, err := g.executeOnce(ctx, name, script)
		if err == nil {
			return output, nil
		}
		lastErr = err

		if Classify(err.Error()) == ClassTerminal {
			// A condition waiting will not change. Do not burn attempts.
			return "", err
		}
		if attempt == g.maxAttempts-1 {
			break
		}

		delay := g.backoff.Delay(attempt)
		g.logger.Warn("script attempt failed, retrying",
			logging.String("script", name),
			logging.Int("attempt", attempt+1),
			logging.Int("max_attempts", g.maxAttempts),
			logging.Duration("retry_in", delay),
			logging.Error(err),
		)
		if sleepErr := g.sleep(ctx, delay); sleepErr != nil {
			return "", sleepErr
		}
	}
	return "", fmt.Errorf("script %q failed after %d attempts: %w", name, g.maxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type osascriptRunner struct{}

func (osascriptRunner) Run(ctx context.Context, binary string, script string) (string, string, error) {
	cmd := exec.CommandContext(ctx, binary, "-e", script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
