// Package rtmperr defines the typed error kinds surfaced by the encoder core.
//
// Grounded on the Op/Err wrapping pattern used for RTMP-layer error
// classification elsewhere in the example pool (alxayo-rtmp-go's
// internal/errors package): each kind is a small struct carrying the
// failing operation and the underlying cause, implements error and
// Unwrap, and marks itself so callers can classify with errors.As
// instead of matching strings.
package rtmperr

import (
	"errors"
	"fmt"
)

// coreMarker is implemented by every error kind the encoder core raises.
type coreMarker interface {
	error
	isCoreError()
}

// InvalidArgumentError indicates a null required argument, an oversize
// string for the short-UTF encoding, or a U29 value outside the
// representable range.
type InvalidArgumentError struct {
	Op  string
	Err error
}

func (e *InvalidArgumentError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid argument: %s", e.Op)
	}
	return fmt.Sprintf("invalid argument: %s: %v", e.Op, e.Err)
}
func (e *InvalidArgumentError) Unwrap() error { return e.Err }
func (e *InvalidArgumentError) isCoreError()  {}

// MissingClassDescriptionError indicates the class-description oracle
// returned no description under the Exception fallback strategy, or a
// value flagged externalizable/dynamic does not expose the required
// capability.
type MissingClassDescriptionError struct {
	Op       string
	TypeName string
	Err      error
}

func (e *MissingClassDescriptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("missing class description: %s (type %s): %v", e.Op, e.TypeName, e.Err)
	}
	return fmt.Sprintf("missing class description: %s (type %s)", e.Op, e.TypeName)
}
func (e *MissingClassDescriptionError) Unwrap() error { return e.Err }
func (e *MissingClassDescriptionError) isCoreError()  {}

// UnknownMessageTypeError is fatal: the chunker was asked to serialize a
// message type it has no body layout for.
type UnknownMessageTypeError struct {
	Op          string
	MessageType byte
}

func (e *UnknownMessageTypeError) Error() string {
	return fmt.Sprintf("unknown message type: %s: type=0x%02x", e.Op, e.MessageType)
}
func (e *UnknownMessageTypeError) isCoreError() {}

// InvalidModeError indicates a sink was asked to perform an operation
// that belongs to the other sink mode (sync vs buffered).
type InvalidModeError struct {
	Op   string
	Want string
	Got  string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid sink mode: %s: want %s, got %s", e.Op, e.Want, e.Got)
}
func (e *InvalidModeError) isCoreError() {}

// TransportError wraps a failure from the underlying byte sink. It is
// also the value delivered to registered Disconnected observers.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) isCoreError()  {}

// IsCoreError reports whether err is, or wraps, any of the encoder
// core's typed error kinds.
func IsCoreError(err error) bool {
	if err == nil {
		return false
	}
	var cm coreMarker
	return errors.As(err, &cm)
}
