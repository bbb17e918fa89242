// Package queue holds the in-memory job queue: the mutable Job record
// wrapping an immutable session.Spec, and the thread-safe Manager that
// serializes a pending FIFO plus a single current-execution slot.
//
// Queue state is deliberately not persisted across restarts; finished jobs
// are archived separately by the history package.
package queue
