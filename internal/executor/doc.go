// Package executor implements the nine-step state machine that drives one
// queued job through the Pro Tools workflow, with fixed progress
// checkpoints, content-dependent skips, and best-effort cleanup on
// failure.
package executor
