// Package notifications delivers job and queue events via pluggable
// notifiers.
//
// The default implementation publishes to ntfy using the topic configured
// in config.toml and gracefully degrades to a no-op when notifications are
// disabled. Per-category toggles let users subscribe to job events, queue
// events, and errors independently.
//
// Extend this package if you need alternative transports; all daemon code
// depends only on the Service interface.
package notifications
