// Package session defines the immutable specification for a Pro Tools
// session build. A Spec is validated once at construction and never
// mutated afterwards; the mutable runtime state lives on queue.Job.
package session
