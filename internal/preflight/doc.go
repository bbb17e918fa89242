// Package preflight provides readiness checks for the external tools and
// filesystem paths session building depends on.
//
// These checks run in two contexts:
//   - The daemon runs them once at startup and refuses to start when a
//     required check fails, so jobs never fail hours later on a missing
//     binary or permission.
//   - The CLI "ptforge deps" and "ptforge daemon status" commands use the
//     individual check functions to display readiness.
package preflight
