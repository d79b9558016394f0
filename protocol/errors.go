package protocol

import (
	"errors"
	"fmt"
)

// Error types for protocol operations.
// These errors help clients determine the appropriate error handling
// strategy, particularly regarding connection management (close vs. reuse).

// ClientError represents a CLIENT_ERROR response from memcached.
// The server rejected the request input; the parsing state after it is
// undefined, so the connection MUST be closed.
//
// Common causes:
//   - Size mismatch in a data block
//   - Non-numeric value for incr/decr
//   - Invalid expiration or flags
//
// Connection handling: CLOSE connection immediately
type ClientError struct {
	Message string
}

func (e *ClientError) Error() string {
	return "CLIENT_ERROR: " + e.Message
}

// ShouldCloseConnection returns true - client errors require closing connection
func (e *ClientError) ShouldCloseConnection() bool {
	return true
}

// ServerError represents a SERVER_ERROR response from memcached.
// The operation failed server-side (out of memory, internal error), but the
// response line was fully framed, so the connection protocol state is valid.
//
// Connection handling: Connection can be REUSED
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "SERVER_ERROR: " + e.Message
}

// ShouldCloseConnection returns false - server errors don't corrupt protocol state
func (e *ServerError) ShouldCloseConnection() bool {
	return false
}

// GenericError represents a bare ERROR response from memcached.
// Typically indicates an unknown command or protocol violation.
//
// Connection handling: Connection should be CLOSED as protocol state is uncertain
type GenericError struct {
	Message string
}

func (e *GenericError) Error() string {
	return e.Message
}

// ShouldCloseConnection returns true - generic errors indicate protocol issues
func (e *GenericError) ShouldCloseConnection() bool {
	return true
}

// InvalidKeyError is returned when a key fails validation.
// The key violates protocol constraints and was rejected before any byte
// was written to the server.
//
// Connection handling: Connection is still valid, operation was rejected client-side
type InvalidKeyError struct {
	Message string
}

func (e *InvalidKeyError) Error() string {
	return e.Message
}

// InvalidItemError is returned when an item payload fails validation,
// e.g. it exceeds the maximum value size. Rejected before any I/O.
//
// Connection handling: Connection is still valid, operation was rejected client-side
type InvalidItemError struct {
	Message string
}

func (e *InvalidItemError) Error() string {
	return e.Message
}

// ParseError represents a client-side parsing error.
// The client failed to parse the server response, which suggests either a
// protocol violation by the server or a bug in the parser. The position in
// the byte stream is unknown afterwards.
//
// Connection handling: Connection should be CLOSED as state is uncertain
type ParseError struct {
	Message string
	Err     error // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse error: " + e.Message + ": " + e.Err.Error()
	}
	return "parse error: " + e.Message
}

// Unwrap returns the underlying error for error chain inspection
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - parse errors indicate corrupted state
func (e *ParseError) ShouldCloseConnection() bool {
	return true
}

// ConnectionError wraps underlying I/O errors from socket operations.
// Used to distinguish network issues from protocol errors.
//
// Connection handling: Connection is already broken, CLOSE it
type ConnectionError struct {
	Op  string // Operation that failed (connect, read, write)
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - connection errors mean connection is broken
func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// ErrorWithConnectionState is an interface for errors that indicate
// whether the connection should be closed.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err requires closing the connection.
//
// Returns true for ClientError, GenericError, ParseError, ConnectionError
// and any unknown error type (conservative default).
// Returns false for ServerError and nil.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	// Unknown error type - be conservative and close connection
	return true
}
