package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"ptforge/internal/automation"
	"ptforge/internal/config"
	"ptforge/internal/deps"
)

// MinFreeBytes is the default disk-space floor for the output volume.
// Sessions with imported audio routinely run into the hundreds of
// megabytes, so anything below this is treated as a doomed run.
const MinFreeBytes = 1 << 30

// accessibilityProbe asks System Events for a process name. It succeeds
// only when the calling process has the Accessibility permission that UI
// scripting requires.
const accessibilityProbe = `tell application "System Events" to return name of first process`

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem holding path has at least
// minBytes available.
func CheckDiskSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%.1f GiB free, need %.1f GiB)",
			path, float64(free)/(1<<30), float64(minBytes)/(1<<30))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%.1f GiB free)", path, float64(free)/(1<<30))}
}

// CheckScripts verifies the embedded automation script set is complete.
func CheckScripts() Result {
	const name = "Automation scripts"
	names := automation.ScriptNames()
	if len(names) == 0 {
		return Result{Name: name, Detail: "no embedded scripts found"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d scripts embedded", len(names))}
}

// CheckBinaries evaluates the external tool requirements.
func CheckBinaries(cfg *config.Config) []Result {
	statuses := deps.CheckBinaries(deps.Required(cfg))
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		result := Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
		}
		if status.Available {
			result.Detail = status.Command
		} else {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

// CheckAccessibility probes the macOS Accessibility permission by asking
// System Events for a process name via osascript. Without the permission
// the probe fails with error -1719, and every UI automation call would
// fail the same way.
func CheckAccessibility(ctx context.Context, osascriptBinary string) Result {
	const name = "Accessibility permission"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(checkCtx, osascriptBinary, "-e", accessibilityProbe)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = err.Error()
		}
		return Result{Name: name, Detail: fmt.Sprintf("UI scripting blocked (%s); grant Accessibility access in System Settings", detail)}
	}
	return Result{Name: name, Passed: true, Detail: "UI scripting allowed"}
}
