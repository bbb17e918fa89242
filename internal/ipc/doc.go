// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management, request/response DTOs, and
// conversions between queue jobs and lightweight wire representations.
// The server embeds the daemon; the client is what ptforge's queue and
// daemon subcommands dial.
package ipc
