// Package logging wraps log/slog with ptforge conventions: standardized
// field names, console and JSON handlers, and context-derived enrichment
// for job and step identifiers.
package logging
