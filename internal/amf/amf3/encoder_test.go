package amf3

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rtmpenc/internal/amf"
	"rtmpenc/internal/sink"
)

func newTestEncoder() (*Encoder, *sink.Sink) {
	s := sink.NewBuffered(&bytes.Buffer{})
	return New(s, amf.NopRegistry{}, amf.DynamicObjectFallback, 0), s
}

func TestEncodeIntegerU29(t *testing.T) {
	e, s := newTestEncoder()
	require.NoError(t, e.Encode(int32(0x81)))
	require.Equal(t, []byte{TypeInteger, 0x81, 0x01}, s.Bytes())
}

func TestEncodeStringInternsSecondOccurrence(t *testing.T) {
	e, s := newTestEncoder()
	require.NoError(t, e.Encode("ab"))
	require.NoError(t, e.Encode("ab"))
	require.Equal(t, []byte{
		TypeString, 0x05, 0x61, 0x62,
		TypeString, 0x00,
	}, s.Bytes())
}

func TestEncodeLargeIntegerFallsBackToDouble(t *testing.T) {
	e, s := newTestEncoder()
	require.NoError(t, e.Encode(int32(maxAmf3Integer+1)))
	require.Equal(t, byte(TypeDouble), s.Bytes()[0])
}

func TestEncodeArrayTracksObjectReference(t *testing.T) {
	e, s := newTestEncoder()
	inner := amf.Array{int32(1)}
	outer := amf.Array{inner, inner}
	require.NoError(t, e.Encode(outer))
	b := s.Bytes()
	require.Equal(t, byte(TypeArray), b[0])
	// outer takes index 0 and inner index 1. The first occurrence of
	// inner is inline (header 0x03, terminator 0x01, Integer 1); the
	// second is a reference (low bit clear: U29(1<<1) = 0x02) rather
	// than a second inline header + terminator + body.
	require.Equal(t, []byte{
		TypeArray, 0x05, 0x01,
		TypeArray, 0x03, 0x01, TypeInteger, 0x01,
		TypeArray, 0x02,
	}, b)
}

func TestEncodeDateReferencesSameValue(t *testing.T) {
	e, s := newTestEncoder()
	t1 := mustTime(t, "2020-01-01T00:00:00Z")
	require.NoError(t, e.Encode(t1))
	require.NoError(t, e.Encode(t1))
	b := s.Bytes()
	// Two Date markers; the second's body is a one-byte reference(0).
	require.Equal(t, byte(TypeDate), b[0])
	require.Equal(t, byte(TypeDate), b[10])
	require.Equal(t, byte(0x00), b[11])
	require.Len(t, b, 12)
}

func TestEncodeTypedObjectReusesClassDefinition(t *testing.T) {
	e, s := newTestEncoder()
	desc := &amf.ClassDescription{
		Name: "Point",
		Members: []amf.Member{
			{Name: "x", Get: func(i interface{}) amf.Value { return i.(point).x }},
			{Name: "y", Get: func(i interface{}) amf.Value { return i.(point).y }},
		},
	}
	a := &amf.TypedObject{Class: desc, Instance: point{1, 2}}
	b := &amf.TypedObject{Class: desc, Instance: point{3, 4}}
	require.NoError(t, e.Encode(a))
	require.NoError(t, e.Encode(b))
	out := s.Bytes()
	require.Equal(t, byte(TypeObject), out[0])
	// b's traits header must be the 2-bit "class reference" form
	// (idx<<2)|0b01 = 0x01 for index 0, not a fresh 0x03-tagged header.
	require.Contains(t, string(out), string([]byte{TypeObject, 0x01}))
}

func TestEncodeVectorIntIsInline(t *testing.T) {
	e, s := newTestEncoder()
	require.NoError(t, e.Encode(VectorInt{Items: []int32{1, 2, 3}, FixedSize: true}))
	b := s.Bytes()
	require.Equal(t, byte(TypeVectorInt), b[0])
}

func TestMaxDepthIsConfigurable(t *testing.T) {
	s := sink.NewBuffered(&bytes.Buffer{})
	e := New(s, amf.MapRegistry{}, amf.DynamicObjectFallback, 2)

	desc := &amf.ClassDescription{Name: "Nested", IsExternalizable: true}
	var chain func(depth int) *amf.TypedObject
	chain = func(depth int) *amf.TypedObject {
		return &amf.TypedObject{Class: desc, Instance: recursiveExternal{depth: depth, next: chain}}
	}
	require.Error(t, e.Encode(chain(5)))
}

type recursiveExternal struct {
	depth int
	next  func(int) *amf.TypedObject
}

func (r recursiveExternal) WriteExternal(e *Encoder) error {
	if r.depth <= 0 {
		return nil
	}
	return e.Encode(r.next(r.depth - 1))
}

type point struct{ x, y int32 }

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}
