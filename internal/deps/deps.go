package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"ptforge/internal/config"
)

// Requirement defines an external tool the daemon relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Required returns the external tool requirements for the configured
// installation. osascript drives every Pro Tools interaction; ffprobe only
// backs the optional pre-enqueue audio consistency check.
func Required(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "osascript",
			Command:     cfg.OsascriptBinary(),
			Description: "Runs the AppleScript UI automation against Pro Tools",
		},
		{
			Name:        "ffprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Inspects audio files before enqueue",
			Optional:    true,
		},
	}
}

// AllRequiredAvailable reports whether every non-optional requirement in
// statuses resolved to a usable binary.
func AllRequiredAvailable(statuses []Status) bool {
	for _, status := range statuses {
		if !status.Optional && !status.Available {
			return false
		}
	}
	return true
}
