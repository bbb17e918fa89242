package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ptforge/internal/automation"
	"ptforge/internal/daemon"
	"ptforge/internal/executor"
	"ptforge/internal/history"
	"ptforge/internal/ipc"
	"ptforge/internal/logging"
	"ptforge/internal/notifications"
	"ptforge/internal/preflight"
	"ptforge/internal/protools"
	"ptforge/internal/queue"
)

const apiShutdownTimeout = 5 * time.Second

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipChecks bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the ptforge daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemonProcess(cmd.Context(), ctx, skipChecks)
		},
	}
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip startup environment checks")
	return cmd
}

func runDaemonProcess(cmdCtx context.Context, ctx *commandContext, skipChecks bool) error {
	if ctx == nil {
		return fmt.Errorf("command context is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The IPC stop request unwinds through the same cancellation as a
	// signal so shutdown has a single path.
	runCtx, stopRun := context.WithCancel(signalCtx)
	defer stopRun()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logPath := filepath.Join(cfg.Paths.LogDir, "ptforge.log")
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if !skipChecks {
		results := preflight.RunAll(runCtx, cfg)
		for _, result := range results {
			if result.Passed {
				continue
			}
			if result.Optional {
				logger.Warn("environment check failed",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail))
				continue
			}
			return fmt.Errorf("environment check %q failed: %s (rerun with --skip-checks to override)", result.Name, result.Detail)
		}
	}

	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}

	manager := queue.NewManager()
	gateway := automation.NewGateway(cfg, logger)
	workflow := protools.NewClient(cfg, gateway, logger)
	exec := executor.New(workflow, logger)
	notifier := notifications.NewService(cfg)

	d, err := daemon.New(cfg, logger, manager, exec, notifier, store)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := ctx.socketPath()
	ipcServer, err := ipc.NewServer(runCtx, socketPath, d, ipc.StopFunc(stopRun), logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	var apiServer *daemon.APIServer
	if cfg.Paths.APIBind != "" {
		apiServer = daemon.NewAPIServer(d, logger)
		go func() {
			if err := apiServer.Serve(); err != nil {
				logger.Error("api server", logging.Error(err))
			}
		}()
	}

	if err := d.Start(runCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "ptforge.pid")
	if err := writePIDFile(pidPath); err != nil {
		logger.Warn("write pid file", logging.Error(err))
	}
	defer os.Remove(pidPath)

	<-runCtx.Done()
	logger.Info("ptforge daemon shutting down")

	if apiServer != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), apiShutdownTimeout)
		defer cancelShutdown()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("api shutdown", logging.Error(err))
		}
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644)
}
