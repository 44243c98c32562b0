package amf0

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"rtmpenc/internal/amf"
	"rtmpenc/internal/sink"
)

func newTestEncoder() (*Encoder, *sink.Sink) {
	s := sink.NewBuffered(&bytes.Buffer{})
	return New(s, amf.NopRegistry{}, amf.DynamicObjectFallback, 0), s
}

func TestEncodeShortString(t *testing.T) {
	e, s := newTestEncoder()
	require.NoError(t, e.Encode("hi"))
	require.Equal(t, []byte{0x02, 0x00, 0x02, 0x68, 0x69}, s.Bytes())
}

func TestEncodeBool(t *testing.T) {
	e, s := newTestEncoder()
	require.NoError(t, e.Encode(true))
	require.Equal(t, []byte{TypeBoolean, 0x01}, s.Bytes())
}

func TestEncodeNumber(t *testing.T) {
	e, s := newTestEncoder()
	require.NoError(t, e.Encode(int32(1)))
	require.Equal(t, byte(TypeNumber), s.Bytes()[0])
	require.Len(t, s.Bytes(), 9)
}

func TestEncodeStrictArrayRefsRepeatedComposite(t *testing.T) {
	e, s := newTestEncoder()
	inner := amf.Array{int32(1)}
	outer := amf.Array{inner, inner}
	require.NoError(t, e.Encode(outer))
	b := s.Bytes()
	require.Equal(t, byte(TypeStrictArray), b[0])
	// Second occurrence of inner must be a Reference marker, not a
	// second StrictArray body.
	require.Contains(t, string(b), string([]byte{TypeReference}))
}

func TestEncodeEcmaArrayTerminator(t *testing.T) {
	e, s := newTestEncoder()
	m := amf.Map{{Key: "a", Value: int32(1)}}
	require.NoError(t, e.Encode(m))
	b := s.Bytes()
	require.Equal(t, byte(TypeEcmaArray), b[0])
	// Ends with the empty-name + ObjectEnd sentinel.
	require.Equal(t, []byte{0x00, 0x00, TypeObjectEnd}, b[len(b)-3:])
}

func TestEncodeTopUpgradesToAmf3(t *testing.T) {
	e, s := newTestEncoder()
	require.NoError(t, e.EncodeTop("x", AMF3))
	b := s.Bytes()
	require.Equal(t, byte(TypeAmf3Object), b[0])
}

func TestEncodeDynamicObjectWithClassName(t *testing.T) {
	e, s := newTestEncoder()
	dyn := &amf.DynamicObject{ClassName: "Foo", Fields: amf.Map{{Key: "a", Value: int32(1)}}}
	require.NoError(t, e.Encode(dyn))
	b := s.Bytes()
	require.Equal(t, byte(TypeTypedObject), b[0])
}

func TestEncodeDictionaryIsUnsupported(t *testing.T) {
	e, _ := newTestEncoder()
	err := e.Encode(amf.Dictionary{{Key: "a", Value: int32(1)}})
	require.Error(t, err)
}
