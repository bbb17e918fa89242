// Package automation executes embedded AppleScript templates against
// Pro Tools through osascript, with placeholder substitution, a per-call
// timeout ceiling, failure classification, and exponential-backoff retry.
package automation
