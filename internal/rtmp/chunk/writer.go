package chunk

import (
	"rtmpenc/internal/rtmperr"
	"rtmpenc/internal/sink"
)

// Header is one message's logical chunk header: everything the format
// selection and wire encoding in this package compare against the
// previous header seen on the same chunk stream.
type Header struct {
	ChunkStreamID   uint32
	Timestamp       uint32
	PacketLength    uint32
	MessageType     byte
	MessageStreamID uint32
	// IsTimerRelative allows this header to be compressed against the
	// previous header on the same chunk stream (Type 1/2/3). When it is
	// false the header is always written as Type 0. Timestamp is always
	// absolute either way; Type-1/2 headers carry the difference the
	// writer computes from the previous header's Timestamp — see Write's
	// doc comment.
	IsTimerRelative bool
}

// Disconnected is invoked at most once, the first time a Write call's
// underlying stream returns an error. After the call, the Writer is
// terminal: every subsequent Write fails immediately without touching
// the sink.
type Disconnected func(err *rtmperr.TransportError)

// Writer implements the RTMP chunk writer (component C7). One Writer
// serializes chunks for exactly one connection's outbound direction;
// it is not safe for concurrent use — the specification's concurrency
// model puts exactly one consumer on the writer side (see the queue
// package).
type Writer struct {
	s *sink.Sink

	writeChunkSize uint32
	pendingSize    uint32
	havePending    bool

	prev map[uint32]Header

	onDisconnect Disconnected
	terminal     bool
}

// NewWriter creates a Writer writing chunk headers and payload through
// s, starting from the default chunk size.
func NewWriter(s *sink.Sink) *Writer {
	return &Writer{s: s, writeChunkSize: DefaultChunkSize, prev: make(map[uint32]Header)}
}

// OnDisconnected registers the observer invoked on the writer's first
// transport failure.
func (w *Writer) OnDisconnected(fn Disconnected) {
	w.onDisconnect = fn
}

// SetChunkSizeField stages a chunk-size change that takes effect once
// the next call to Write has completed successfully, per the
// specification's deferral rule: that Write is still fragmented with
// the old size, and every Write after it uses the new one. Callers arm
// the new size with this first, then write the SetChunkSize control
// message's own body as an ordinary message through Write.
func (w *Writer) SetChunkSizeField(size uint32) {
	w.pendingSize = size
	w.havePending = true
}

// Write serializes one message as one or more RTMP chunks: a header
// selected by comparing h against the previous header on the same
// chunk stream, followed by body fragmented at the writer's current
// chunk size with Type-3 continuation headers.
//
// h.Timestamp is always the message's absolute timestamp: an
// encoder-side writer always knows it (it is not replaying a captured
// timestamp-delta stream). A header with h.IsTimerRelative false is
// always written as Type 0; callers set it true once a prior header
// has been sent on the chunk stream, and Type 1/2/3 are then selected
// by comparing h with that header (a messageStreamId change still
// forces Type 0).
func (w *Writer) Write(h Header, body []byte) error {
	if w.terminal {
		return &rtmperr.TransportError{Op: "chunk.Write", Err: errTerminalWriter}
	}
	if err := w.writeOne(h, body); err != nil {
		if te, ok := err.(*rtmperr.TransportError); ok {
			w.terminal = true
			if w.onDisconnect != nil {
				w.onDisconnect(te)
			}
		}
		return err
	}
	if w.havePending {
		w.writeChunkSize = w.pendingSize
		w.havePending = false
	}
	return nil
}

func (w *Writer) writeOne(h Header, body []byte) error {
	prev, ok := w.prev[h.ChunkStreamID]
	format := selectFormat(h, prev, ok)
	w.prev[h.ChunkStreamID] = h

	if err := w.writeBasicHeader(format, h.ChunkStreamID); err != nil {
		return err
	}
	if err := w.writeMessageHeader(format, h, prev); err != nil {
		return err
	}

	packetLength := int(h.PacketLength)
	chunkSize := int(w.writeChunkSize)
	for i := 0; i < packetLength; i += chunkSize {
		if i > 0 {
			if err := w.writeBasicHeader(Fmt3, h.ChunkStreamID); err != nil {
				return err
			}
		}
		end := i + chunkSize
		if end > len(body) {
			end = len(body)
		}
		if err := w.s.WriteBytes(body, i, end-i); err != nil {
			return err
		}
	}
	return nil
}

// selectFormat implements section 4.7's header-format selection rule.
func selectFormat(h, prev Header, havePrev bool) byte {
	if !havePrev || h.MessageStreamID != prev.MessageStreamID || !h.IsTimerRelative {
		return Fmt0
	}
	if h.PacketLength != prev.PacketLength || h.MessageType != prev.MessageType {
		return Fmt1
	}
	if h.Timestamp != prev.Timestamp {
		return Fmt2
	}
	return Fmt3
}

// writeBasicHeader implements section 4.7's 1/2/3-byte chunk-stream-id
// encoding.
func (w *Writer) writeBasicHeader(format byte, csID uint32) error {
	switch {
	case csID <= 63:
		return w.s.WriteByte(format<<6 | byte(csID))
	case csID <= 319:
		if err := w.s.WriteByte(format << 6); err != nil {
			return err
		}
		return w.s.WriteByte(byte(csID - 64))
	default:
		if err := w.s.WriteByte(format<<6 | 1); err != nil {
			return err
		}
		rel := csID - 64
		if err := w.s.WriteByte(byte(rel & 0xFF)); err != nil {
			return err
		}
		return w.s.WriteByte(byte(rel >> 8))
	}
}

func needsExtendedTimestamp(ts uint32) bool {
	return ts >= extendedTimestampEscape
}

// writeMessageHeader writes the format-specific message header fields
// and, when the timestamp field saturates, the extended-timestamp
// trailer (section 4.7).
func (w *Writer) writeMessageHeader(format byte, h, prev Header) error {
	switch format {
	case Fmt0:
		if err := w.writeTimestampField(h.Timestamp); err != nil {
			return err
		}
		if err := w.s.WriteU24BE(h.PacketLength); err != nil {
			return err
		}
		if err := w.s.WriteByte(h.MessageType); err != nil {
			return err
		}
		if err := w.s.WriteI32LE(int32(h.MessageStreamID)); err != nil {
			return err
		}
		return w.writeExtendedTimestampIfNeeded(h.Timestamp)

	case Fmt1:
		delta := h.Timestamp - prev.Timestamp
		if err := w.writeTimestampField(delta); err != nil {
			return err
		}
		if err := w.s.WriteU24BE(h.PacketLength); err != nil {
			return err
		}
		if err := w.s.WriteByte(h.MessageType); err != nil {
			return err
		}
		return w.writeExtendedTimestampIfNeeded(delta)

	case Fmt2:
		delta := h.Timestamp - prev.Timestamp
		if err := w.writeTimestampField(delta); err != nil {
			return err
		}
		return w.writeExtendedTimestampIfNeeded(delta)

	default: // Fmt3
		return nil
	}
}

func (w *Writer) writeTimestampField(v uint32) error {
	if needsExtendedTimestamp(v) {
		return w.s.WriteU24BE(extendedTimestampEscape)
	}
	return w.s.WriteU24BE(v)
}

func (w *Writer) writeExtendedTimestampIfNeeded(v uint32) error {
	if !needsExtendedTimestamp(v) {
		return nil
	}
	return w.s.WriteU32BE(v)
}
