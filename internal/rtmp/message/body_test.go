package message

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rtmpenc/internal/amf"
	"rtmpenc/internal/rtmp/chunk"
)

func TestBuildSetChunkSize(t *testing.T) {
	c := NewCodecs(amf.NopRegistry{}, amf.DynamicObjectFallback, 0)
	body, err := c.Build(&Message{Type: chunk.TypeSetChunkSize, NewChunkSize: 4096})
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x00, 0x10, 0x00}, body)
}

func TestBuildCommandAmf0RequestWritesMethodNameThenArgs(t *testing.T) {
	c := NewCodecs(amf.NopRegistry{}, amf.DynamicObjectFallback, 0)
	call := &Call{MethodName: "connect", IsRequest: true, IsInvoke: true, InvokeID: 1, ConnParams: nil}
	body, err := c.Build(&Message{Type: chunk.TypeCommandAmf0, Call: call})
	require.NoError(t, err)
	// AMF0 string "connect": marker 0x02, u16 len 7, "connect".
	require.Equal(t, byte(0x02), body[0])
	require.Equal(t, []byte("connect"), body[3:10])
}

func TestBuildCommandAmf0FailedInvokeSubstitutesErrorStatus(t *testing.T) {
	c := NewCodecs(amf.NopRegistry{}, amf.DynamicObjectFallback, 0)
	call := &Call{IsRequest: false, Success: false, IsInvoke: true, InvokeID: 2, ConnParams: nil,
		Args: []amf.Value{"should be replaced"}}
	body, err := c.Build(&Message{Type: chunk.TypeCommandAmf0, Call: call})
	require.NoError(t, err)
	// "_error" string, then Number(2), then Null, then the substituted
	// EcmaArray/Object status — "should be replaced" must not appear.
	require.NotContains(t, string(body), "should be replaced")
}

func TestBuildCommandAmf3PrependsPadByte(t *testing.T) {
	c := NewCodecs(amf.NopRegistry{}, amf.DynamicObjectFallback, 0)
	call := &Call{MethodName: "ping", IsRequest: true}
	body, err := c.Build(&Message{Type: chunk.TypeCommandAmf3, Call: call})
	require.NoError(t, err)
	require.Equal(t, byte(0x00), body[0])
}

func TestBuildUnknownMessageTypeFails(t *testing.T) {
	c := NewCodecs(amf.NopRegistry{}, amf.DynamicObjectFallback, 0)
	_, err := c.Build(&Message{Type: 0x7F})
	require.Error(t, err)
}

func TestBuildSharedObjectIsEmptyBody(t *testing.T) {
	c := NewCodecs(amf.NopRegistry{}, amf.DynamicObjectFallback, 0)
	body, err := c.Build(&Message{Type: chunk.TypeSharedObjectAmf0})
	require.NoError(t, err)
	require.Empty(t, body)
}
