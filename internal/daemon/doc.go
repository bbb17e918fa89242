// Package daemon assembles the long-running ptforge process: the serial
// consumer loop that drains the job queue, the watch-folder monitor, the
// HTTP control API, and single-instance locking. Producers enqueue
// concurrently; exactly one consumer executes jobs, because Pro Tools
// holds one session at a time.
package daemon
