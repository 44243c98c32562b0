// Package sink implements the byte-level write surface every encoder in
// this repository writes through. It hides host byte order from callers
// (everything is big-endian except the RTMP "reverse int") and supports
// two fixed modes: synchronous writes straight to the underlying stream,
// or buffered writes into an in-memory scratch the caller flushes once
// per packet.
//
// Grounded on the host project's use of plain io.Writer + encoding/binary
// for wire encoding (internal/core/protocol/rtmp/message.go,
// internal/core/protocol/flv/tag.go); generalized here into a single
// mode-parameterized type instead of duplicating encoder bodies per mode.
package sink

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"rtmpenc/internal/rtmperr"
)

// Mode selects whether a Sink writes straight through to its underlying
// stream or accumulates into an in-memory buffer for an explicit Flush.
type Mode int

const (
	// Sync writes every call straight to the underlying io.Writer.
	Sync Mode = iota
	// Buffered accumulates writes into an in-memory buffer; the caller
	// must call Flush to emit them as a single underlying write.
	Buffered
)

func (m Mode) String() string {
	if m == Buffered {
		return "buffered"
	}
	return "sync"
}

// Sink is a byte-oriented writer fixed to one Mode for its lifetime.
// It is not safe for concurrent use by multiple goroutines.
type Sink struct {
	mode Mode
	w    io.Writer
	buf  bytes.Buffer
}

// New creates a Sink in Sync mode, writing directly to w.
func New(w io.Writer) *Sink {
	return &Sink{mode: Sync, w: w}
}

// NewBuffered creates a Sink in Buffered mode. w receives the accumulated
// bytes only when Flush is called.
func NewBuffered(w io.Writer) *Sink {
	return &Sink{mode: Buffered, w: w}
}

// Mode reports the sink's fixed mode.
func (s *Sink) Mode() Mode { return s.mode }

// dest returns the io.Writer this sink's primitive operations write to:
// the underlying stream in Sync mode, the scratch buffer in Buffered mode.
func (s *Sink) dest() io.Writer {
	if s.mode == Buffered {
		return &s.buf
	}
	return s.w
}

// Flush writes the accumulated buffer to the underlying stream as one
// write and resets the buffer. It is only valid in Buffered mode.
func (s *Sink) Flush() error {
	if s.mode != Buffered {
		return &rtmperr.InvalidModeError{Op: "sink.Flush", Want: Buffered.String(), Got: s.mode.String()}
	}
	if s.buf.Len() == 0 {
		return nil
	}
	_, err := s.w.Write(s.buf.Bytes())
	s.buf.Reset()
	if err != nil {
		return &rtmperr.TransportError{Op: "sink.Flush", Err: err}
	}
	return nil
}

// Bytes returns the accumulated buffer without flushing. Only valid in
// Buffered mode; used when a sink is used purely as an in-memory scratch
// (e.g. the per-message body scratch in package message).
func (s *Sink) Bytes() []byte {
	return s.buf.Bytes()
}

// WriteByte writes a single byte.
func (s *Sink) WriteByte(b byte) error {
	_, err := s.dest().Write([]byte{b})
	return wrap("sink.WriteByte", err)
}

// WriteBytes writes buf[offset : offset+length].
func (s *Sink) WriteBytes(buf []byte, offset, length int) error {
	if offset < 0 || length < 0 || offset+length > len(buf) {
		return &rtmperr.InvalidArgumentError{Op: "sink.WriteBytes", Err: io.ErrShortBuffer}
	}
	_, err := s.dest().Write(buf[offset : offset+length])
	return wrap("sink.WriteBytes", err)
}

// WriteU16BE writes a 16-bit unsigned integer, big-endian.
func (s *Sink) WriteU16BE(v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := s.dest().Write(b[:])
	return wrap("sink.WriteU16BE", err)
}

// WriteU24BE writes the low 24 bits of v, big-endian.
func (s *Sink) WriteU24BE(v uint32) error {
	b := [3]byte{byte(v >> 16), byte(v >> 8), byte(v)}
	_, err := s.dest().Write(b[:])
	return wrap("sink.WriteU24BE", err)
}

// WriteU32BE writes a 32-bit unsigned integer, big-endian.
func (s *Sink) WriteU32BE(v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := s.dest().Write(b[:])
	return wrap("sink.WriteU32BE", err)
}

// WriteI32BE writes a 32-bit signed integer, big-endian.
func (s *Sink) WriteI32BE(v int32) error {
	return s.WriteU32BE(uint32(v))
}

// WriteI32LE writes a 32-bit signed integer, little-endian. This is the
// RTMP "reverse int" used only for the message-stream-id field of a
// Type-0 chunk header.
func (s *Sink) WriteI32LE(v int32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	_, err := s.dest().Write(b[:])
	return wrap("sink.WriteI32LE", err)
}

// WriteF64BE writes an IEEE-754 double, big-endian.
func (s *Sink) WriteF64BE(v float64) error {
	return s.WriteU64BE(math.Float64bits(v))
}

// WriteF32BE writes an IEEE-754 single, big-endian.
func (s *Sink) WriteF32BE(v float32) error {
	return s.WriteU32BE(math.Float32bits(v))
}

// WriteU64BE writes a 64-bit unsigned integer, big-endian.
func (s *Sink) WriteU64BE(v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := s.dest().Write(b[:])
	return wrap("sink.WriteU64BE", err)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &rtmperr.TransportError{Op: op, Err: err}
}
