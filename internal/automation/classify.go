package automation

import "strings"

// Classification of a failed automation attempt.
type Classification int

const (
	// ClassRetryable marks timing failures that may clear on a later attempt.
	ClassRetryable Classification = iota
	// ClassTerminal marks logic failures that waiting will not change.
	ClassTerminal
)

// Timing-related failure phrases produced by UI scripting when an element
// is not ready yet.
var retryablePatterns = []string{
	"did not appear",
	"not found",
	"doesn't exist",
	"can't get",
	"timeout",
	"timed out",
}

// Explicit critical markers and known logic errors. These are checked
// before the retryable patterns so a "CRITICAL: ... did not appear" message
// still refuses to retry.
var terminalPatterns = []string{
	"critical:",
	"unsupported sample rate",
	"unsupported bit depth",
	"failed to disable apply src",
}

// Classify inspects a failure message and decides whether retrying could
// help. Unrecognized messages default to retryable: surfacing a transient
// failure is worse than burning the attempt budget on a permanent one.
func Classify(message string) Classification {
	lower := strings.ToLower(message)
	for _, pattern := range terminalPatterns {
		if strings.Contains(lower, pattern) {
			return ClassTerminal
		}
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(lower, pattern) {
			return ClassRetryable
		}
	}
	return ClassRetryable
}
