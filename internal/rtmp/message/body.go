// Package message implements the RTMP message body serializer
// (component C6): the per-message-type payload layouts, and the
// "command-or-data" argument sequencing shared by the Data/Command
// message types.
//
// Grounded on the host project's internal/core/protocol/rtmp/message.go
// (CreateSetChunkSize, CreateWindowAckSize, CreateSetPeerBandwidth,
// CreateStreamBegin — the fixed-layout control message bodies) and its
// internal/core/protocol/amf0 package (the command-argument list shape
// those bodies used to build by hand); this package generalizes both
// into a single per-type table driven by the amf and amf3 encoders
// instead of ad hoc byte slices, and adds the Invoke/error-substitution
// rules the host project's fire-and-forget command encoder never
// needed.
package message

import (
	"bytes"

	"rtmpenc/internal/amf"
	"rtmpenc/internal/amf/amf0"
	"rtmpenc/internal/amf/amf3"
	"rtmpenc/internal/rtmp/chunk"
	"rtmpenc/internal/rtmperr"
	"rtmpenc/internal/sink"
)

// valueEncoder is the common surface of *amf0.Encoder and *amf3.Encoder
// that command-or-data sequencing needs.
type valueEncoder interface {
	Encode(v amf.Value) error
}

// Call describes one Data or Command message's argument sequence, per
// section 4.6's "command-or-data" rule.
type Call struct {
	// MethodName is the outbound method name for a request. Ignored
	// for a response (Success/failure selects "_result"/"_error").
	MethodName string
	IsRequest  bool
	Success    bool

	// IsInvoke marks an RPC call carrying a numeric invocation id,
	// distinct from a one-way Data message.
	IsInvoke bool
	InvokeID float64

	// ConnParams is the value written immediately after the name for
	// an "@setDataFrame" Data message (the data-frame name), or after
	// the invocation id for an Invoke (the command object, frequently
	// null).
	ConnParams amf.Value

	// Args is the ordered argument list. On a failed Invoke this is
	// replaced wholesale by a single CallFailed status object.
	Args []amf.Value
}

const setDataFrameMethod = "@setDataFrame"

// statusCodeCallFailed is the code substituted for a failed Invoke's
// argument list (section 4.6, rule 4).
const statusCodeCallFailed = "CallFailed"

func errorStatusObject() amf.Value {
	return amf.Map{
		{Key: "level", Value: "error"},
		{Key: "code", Value: statusCodeCallFailed},
		{Key: "description", Value: "Call failed."},
	}
}

func writeCommandOrData(enc valueEncoder, c *Call) error {
	name := c.MethodName
	if !c.IsRequest {
		if c.Success {
			name = "_result"
		} else {
			name = "_error"
		}
	}
	if err := enc.Encode(name); err != nil {
		return err
	}

	switch {
	case name == setDataFrameMethod:
		if err := enc.Encode(c.ConnParams); err != nil {
			return err
		}
	case c.IsInvoke:
		if err := enc.Encode(c.InvokeID); err != nil {
			return err
		}
		if err := enc.Encode(c.ConnParams); err != nil {
			return err
		}
	}

	args := c.Args
	if c.IsInvoke && !c.IsRequest && !c.Success {
		args = []amf.Value{errorStatusObject()}
	}
	for _, a := range args {
		if err := enc.Encode(a); err != nil {
			return err
		}
	}
	return nil
}

// Codecs holds the settings Build uses to construct the AMF0/AMF3
// encoders for the AMF0/AMF3 message types. One Codecs instance may be
// reused across messages; Build constructs a new encoder over a new
// scratch sink for every message, so reference indices never cross
// message boundaries (section 4.6: "a freshly initialized reference
// context").
type Codecs struct {
	registry amf.ClassRegistry
	fallback amf.FallbackStrategy
	maxDepth int
}

// NewCodecs creates a Codecs sharing one class registry and fallback
// strategy across every message body it builds. maxDepth is forwarded to
// every AMF3 encoder Build constructs (EncoderConfig.MaxExternalizableDepth,
// section 10); a non-positive value falls back to amf3's own default.
func NewCodecs(registry amf.ClassRegistry, fallback amf.FallbackStrategy, maxDepth int) *Codecs {
	return &Codecs{registry: registry, fallback: fallback, maxDepth: maxDepth}
}

// Message is one RTMP message awaiting body serialization: its type,
// and the type-specific payload the caller has already built from its
// own application state.
type Message struct {
	Type            byte
	ChunkStreamID   uint32
	MessageStreamID uint32
	Timestamp       uint32

	// NewChunkSize / AbortChunkStream / SequenceNumber / WindowSize /
	// LimitType / ControlEventType / ControlValues carry the fixed
	// scalar fields for the control message types.
	NewChunkSize     uint32
	AbortChunkStream uint32
	SequenceNumber   uint32
	WindowSize       uint32
	LimitType        byte
	ControlEventType uint16
	ControlValues    []int32

	// Raw carries the Audio/Video payload verbatim.
	Raw []byte

	// Call carries the command-or-data argument sequence for
	// Data/Command message types.
	Call *Call
}

// Build serializes msg's body into a freshly scratch-buffered sink and
// returns the bytes to hand to the chunk writer, per section 4.6's
// per-message-type layout table.
func (c *Codecs) Build(msg *Message) ([]byte, error) {
	var buf bytes.Buffer
	s := sink.NewBuffered(&buf)

	switch msg.Type {
	case chunk.TypeSetChunkSize:
		if err := s.WriteU32BE(msg.NewChunkSize); err != nil {
			return nil, err
		}
	case chunk.TypeAbortMessage:
		if err := s.WriteU32BE(msg.AbortChunkStream); err != nil {
			return nil, err
		}
	case chunk.TypeAcknowledgement:
		if err := s.WriteU32BE(msg.SequenceNumber); err != nil {
			return nil, err
		}
	case chunk.TypeUserControl:
		if err := s.WriteU16BE(msg.ControlEventType); err != nil {
			return nil, err
		}
		for _, v := range msg.ControlValues {
			if err := s.WriteI32BE(v); err != nil {
				return nil, err
			}
		}
	case chunk.TypeWindowAckSize:
		if err := s.WriteU32BE(msg.WindowSize); err != nil {
			return nil, err
		}
	case chunk.TypeSetPeerBandwidth:
		if err := s.WriteU32BE(msg.WindowSize); err != nil {
			return nil, err
		}
		if err := s.WriteByte(msg.LimitType); err != nil {
			return nil, err
		}
	case chunk.TypeAudio, chunk.TypeVideo:
		if err := s.WriteBytes(msg.Raw, 0, len(msg.Raw)); err != nil {
			return nil, err
		}
	case chunk.TypeDataAmf0, chunk.TypeCommandAmf0:
		enc := amf0.New(s, c.registry, c.fallback, c.maxDepth)
		if err := writeCommandOrData(enc, msg.Call); err != nil {
			return nil, err
		}
	case chunk.TypeDataAmf3:
		enc := amf3.New(s, c.registry, c.fallback, c.maxDepth)
		if err := writeCommandOrData(enc, msg.Call); err != nil {
			return nil, err
		}
	case chunk.TypeCommandAmf3:
		if err := s.WriteByte(0); err != nil {
			return nil, err
		}
		enc := amf3.New(s, c.registry, c.fallback, c.maxDepth)
		if err := writeCommandOrData(enc, msg.Call); err != nil {
			return nil, err
		}
	case chunk.TypeSharedObjectAmf0, chunk.TypeSharedObjectAmf3, chunk.TypeAggregate:
		// Reserved / out of scope: emit an empty body per the design
		// notes rather than fail the whole packet.
	default:
		return nil, &rtmperr.UnknownMessageTypeError{Op: "message.Build", MessageType: msg.Type}
	}

	return buf.Bytes(), nil
}

// Header builds the chunk.Header describing msg's body (of the given
// serialized length) for the chunk writer. isTimerRelative should be
// true once the caller has already sent a prior header on this chunk
// stream; see chunk.Writer.Write's doc comment for why this package
// always produces absolute timestamps.
func (msg *Message) Header(bodyLen int, isTimerRelative bool) chunk.Header {
	return chunk.Header{
		ChunkStreamID:   msg.ChunkStreamID,
		Timestamp:       msg.Timestamp,
		PacketLength:    uint32(bodyLen),
		MessageType:     msg.Type,
		MessageStreamID: msg.MessageStreamID,
		IsTimerRelative: isTimerRelative,
	}
}
