package preflight

import (
	"context"

	"ptforge/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes the applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDiskSpace("Output disk space", cfg.Paths.OutputDir, MinFreeBytes),
		CheckScripts(),
	}
	results = append(results, CheckBinaries(cfg)...)
	if cfg.Automation.CheckPermissions {
		results = append(results, CheckAccessibility(ctx, cfg.OsascriptBinary()))
	}
	return results
}

// AllPassed reports whether every non-optional check passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Optional && !result.Passed {
			return false
		}
	}
	return true
}
