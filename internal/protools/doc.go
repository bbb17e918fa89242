// Package protools exposes the high-level Pro Tools operations the job
// executor drives: launch, create, import, save, close. The live client
// composes automation gateway calls; tests substitute the Workflow
// interface.
package protools
