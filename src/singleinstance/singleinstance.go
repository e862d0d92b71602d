// Package singleinstance lets a run-once invocation hand its cycle to the
// resident process over a loopback line protocol:
//
//	client: PING            server: PONG
//	client: STDOUT | INJECT server: SUCCESS <payload> | ERROR <message>
package singleinstance

import (
	"context"
)

// Server owns the TCP endpoint and answers run-once requests.
type Server interface {
	// Start begins listening on the first port of the configured range and accepting client requests.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	// Request returns the parsed client request.
	Request() Request
	// RespondSuccess sends success. For stdout mode, send text; for inject mode, send empty text.
	RespondSuccess(text string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	// Close closes the underlying connection.
	Close() error
}

// Request represents a single run-once client request. OutputToStdout false
// means the resident pastes the result into the focused window itself.
type Request struct {
	OutputToStdout bool
}

// Client attempts to delegate run-once invocation to a resident server.
type Client interface {
	// TryRunOnce scans the configured TCP range, performs handshake, and delegates to resident.
	// If no resident is found, returns delegated=false, err=nil.
	TryRunOnce(ctx context.Context, outputToStdout bool) (delegated bool, text string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
