package config

const (
	defaultOutputDir          = "~/Documents/Pro Tools Sessions"
	defaultWatchDir           = ""
	defaultLogDir             = "~/.local/share/ptforge/logs"
	defaultTemplateDir        = "~/.config/ptforge/templates"
	defaultSocketPath         = "~/.local/share/ptforge/ptforge.sock"
	defaultLockPath           = "~/.local/share/ptforge/ptforge.lock"
	defaultAPIBind            = "127.0.0.1:7523"
	defaultHistoryPath        = "~/.local/share/ptforge/history.db"
	defaultScriptTimeout      = 120
	defaultDialogWait         = 2.0
	defaultImportTimeout      = 60
	defaultWindowTimeout      = 10
	defaultRetryAttempts      = 3
	defaultRetryBaseDelay     = 1.0
	defaultSaveSettleDelay    = 1.0
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultQueuePollInterval  = 2
	defaultErrorRetryInterval = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:   defaultOutputDir,
			WatchDir:    defaultWatchDir,
			LogDir:      defaultLogDir,
			TemplateDir: defaultTemplateDir,
			SocketPath:  defaultSocketPath,
			LockPath:    defaultLockPath,
			APIBind:     defaultAPIBind,
		},
		Automation: Automation{
			ScriptTimeout:    defaultScriptTimeout,
			DialogWait:       defaultDialogWait,
			ImportTimeout:    defaultImportTimeout,
			WindowTimeout:    defaultWindowTimeout,
			RetryAttempts:    defaultRetryAttempts,
			RetryBaseDelay:   defaultRetryBaseDelay,
			SaveSettleDelay:  defaultSaveSettleDelay,
			CheckPermissions: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			JobEvents:      true,
			QueueEvents:    true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
	}
}
