// Package ierrors defines the error taxonomy surfaced by the game client:
// sentinel/wrapped errors inspected with errors.As/errors.Is, plus a
// classification step used only to tag structured log fields, never for
// control flow.
//
// RECIPE FOR ERROR HANDLING in this module:
//   - transport and correlator code returns these typed errors, wrapped with
//     fmt.Errorf("context: %w", err) as they cross package boundaries
//   - user-facing async APIs (connect, RPCs, disconnect) resolve their
//     result handle with one of these errors; they never panic except for
//     programmer errors (empty IDs, invalid kind, nil client)
//   - logger.ErrorErr logs with an "error_category" field from Classify();
//     do not log the same error twice as it propagates up the call stack
package ierrors

import (
	"errors"
	"fmt"
)

// Category buckets errors for structured logging; it feeds the
// "error_category" log field and nothing else.
type Category string

const (
	CategoryAuth       Category = "auth"
	CategoryConnection Category = "connection"
	CategoryProtocol   Category = "protocol"
	CategoryThrottle   Category = "throttle"
	CategoryTimeout    Category = "timeout"
	CategoryReply      Category = "reply"
	CategoryLocal      Category = "local"
	CategoryUnknown    Category = "unknown"
)

// AuthenticationError reports an HTTP 401/403 rejection of the WebSocket
// upgrade or of host discovery. Not retried by the façade. A server close
// with protocol code 4019 is not turned into this type: it reaches callers
// as a ConnectionClosedError and ConnectionClosedEvent carrying code 4019.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Reason
}

// ConnectionError reports a transport open failure, an unexpected close, or
// a malformed URL/scheme. Retriable by the reconnection policy.
type ConnectionError struct {
	Code   int
	Reason string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error (code %d): %s", e.Code, e.Reason)
}

// NoHostsFound reports that host discovery returned an empty list or the
// discovery request itself failed. Retriable after backoff.
type NoHostsFound struct {
	Cause error
}

func (e *NoHostsFound) Error() string {
	if e.Cause != nil {
		return "no interactive hosts found: " + e.Cause.Error()
	}
	return "no interactive hosts found"
}

func (e *NoHostsFound) Unwrap() error { return e.Cause }

// NoReplyError reports that a request timed out waiting for a reply.
// Non-fatal; the caller decides whether to retry.
type NoReplyError struct {
	Method string
	ID     uint32
}

func (e *NoReplyError) Error() string {
	return fmt.Sprintf("no reply received for method %q (id %d)", e.Method, e.ID)
}

// ReplyError wraps a structured {code, message, path} error returned by the
// service for a specific request.
type ReplyError struct {
	Code    int
	Message string
	Path    string
}

func (e *ReplyError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("reply error %d: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("reply error %d: %s", e.Code, e.Message)
}

// ThrottledError reports that outbound admission was rejected by the
// bandwidth throttle for a method. The correlator does not retry it.
type ThrottledError struct {
	Method string
	Bytes  int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("throttled: method %q rejected %d bytes", e.Method, e.Bytes)
}

// ConnectionClosedError reports that the transport closed or errored while
// requests were outstanding; it completes every pending entry.
type ConnectionClosedError struct {
	Code   int
	Reason string
}

func (e *ConnectionClosedError) Error() string {
	return fmt.Sprintf("connection closed (code %d): %s", e.Code, e.Reason)
}

// ProtocolError reports an unparseable frame or an unknown mandatory field.
// The offending packet is dropped and the connection continues.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Detail
}

// PositionRequiredError is a local precondition failure: a control was
// submitted to create() with no ControlPosition entries.
type PositionRequiredError struct {
	ControlID string
}

func (e *PositionRequiredError) Error() string {
	return fmt.Sprintf("control %q has no position and cannot be created", e.ControlID)
}

// Classify returns the logging category for err, walking wrapped errors.
// It never changes behavior — only the "error_category" field attached by
// callers in internal/logger.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return CategoryAuth
	}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return CategoryConnection
	}

	var closedErr *ConnectionClosedError
	if errors.As(err, &closedErr) {
		return CategoryConnection
	}

	var noHosts *NoHostsFound
	if errors.As(err, &noHosts) {
		return CategoryConnection
	}

	var noReply *NoReplyError
	if errors.As(err, &noReply) {
		return CategoryTimeout
	}

	var replyErr *ReplyError
	if errors.As(err, &replyErr) {
		return CategoryReply
	}

	var throttled *ThrottledError
	if errors.As(err, &throttled) {
		return CategoryThrottle
	}

	var protoErr *ProtocolError
	if errors.As(err, &protoErr) {
		return CategoryProtocol
	}

	var posErr *PositionRequiredError
	if errors.As(err, &posErr) {
		return CategoryLocal
	}

	return CategoryUnknown
}
