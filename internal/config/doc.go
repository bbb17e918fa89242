// Package config loads, normalizes, and validates the TOML configuration
// that drives the ptforge daemon and CLI.
package config
