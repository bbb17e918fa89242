// Package services provides shared error tagging and context helpers used
// across workflow components.
package services
