package ledger

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes core failures.
type ErrorCode string

const (
	// ErrCodeTransport indicates the mirror or provisioning endpoint was
	// unreachable or returned a non-success status. Retried on the next
	// scheduled cycle, never fatal.
	ErrCodeTransport ErrorCode = "TRANSPORT_FAILURE"

	// ErrCodeParse indicates a malformed consensus message. The record is
	// dropped and counted; the surrounding poll cycle continues.
	ErrCodeParse ErrorCode = "PARSE_FAILURE"

	// ErrCodeResolutionFailed indicates identity provisioning or lookup
	// failed. The binding stays unresolved; callers may retry with backoff.
	ErrCodeResolutionFailed ErrorCode = "RESOLUTION_FAILED"

	// ErrCodeTimeout indicates a bounded wait was exceeded. Surfaced as a
	// retryable failure, never as a hang.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Error is a coded core error. No Error terminates the hosting process;
// every code is designed to be retried by the scheduler or the caller.
type Error struct {
	Code    ErrorCode
	Message string

	// Topic and Type identify the affected poll source, when applicable.
	Topic string
	Type  string

	// Issuer identifies the affected identity, for resolution failures.
	Issuer string

	Err error // underlying cause, optional
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Topic != "":
		return fmt.Sprintf("%s: %s (topic=%s, type=%s)", e.Code, e.Message, e.Topic, e.Type)
	case e.Issuer != "":
		return fmt.Sprintf("%s: %s (issuer=%s)", e.Code, e.Message, e.Issuer)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewTransportError wraps an endpoint failure for a poll source.
func NewTransportError(topic, typ string, err error) *Error {
	return &Error{
		Code:    ErrCodeTransport,
		Message: "query endpoint unreachable or non-success",
		Topic:   topic,
		Type:    typ,
		Err:     err,
	}
}

// NewParseError wraps a malformed-message failure.
func NewParseError(topic string, seq int64, err error) *Error {
	return &Error{
		Code:    ErrCodeParse,
		Message: fmt.Sprintf("malformed message at sequence %d", seq),
		Topic:   topic,
		Err:     err,
	}
}

// NewResolutionError wraps a provisioning or lookup failure for an issuer.
func NewResolutionError(issuer string, err error) *Error {
	return &Error{
		Code:    ErrCodeResolutionFailed,
		Message: "identity provisioning failed",
		Issuer:  issuer,
		Err:     err,
	}
}

// NewTimeoutError wraps a bounded-wait expiry for a poll source.
func NewTimeoutError(topic, typ string, err error) *Error {
	return &Error{
		Code:    ErrCodeTimeout,
		Message: "operation exceeded its deadline",
		Topic:   topic,
		Type:    typ,
		Err:     err,
	}
}

func codeOf(err error) (ErrorCode, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le.Code, true
	}
	return "", false
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	c, ok := codeOf(err)
	return ok && c == ErrCodeTransport
}

// IsParse reports whether err is a parse failure.
func IsParse(err error) bool {
	c, ok := codeOf(err)
	return ok && c == ErrCodeParse
}

// IsResolutionFailed reports whether err is a failed identity resolution.
func IsResolutionFailed(err error) bool {
	c, ok := codeOf(err)
	return ok && c == ErrCodeResolutionFailed
}

// IsTimeout reports whether err is a bounded-wait expiry.
func IsTimeout(err error) bool {
	c, ok := codeOf(err)
	return ok && c == ErrCodeTimeout
}
