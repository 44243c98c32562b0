// Package amf0 implements the AMF0 encoder (component C4): per-type
// writers, the object/string reference table, and the upgrade-to-AMF3
// marker. Output matches Adobe's amf0_spec_121207 type markers.
//
// Grounded on the host project's internal/core/protocol/amf0 package
// for the marker set and the overall encode-to-io.Writer shape;
// generalized here to use the ordered amf.Value model (instead of a
// bare Go map, which iterates in randomized order and cannot give
// deterministic reference-table output) and to add the reference
// table, LongString, Date, Xml, and TypedObject support the host
// project's command-response-only encoder does not need.
package amf0

// Type markers, per Adobe amf0_spec_121207.
const (
	TypeNumber      = 0x00
	TypeBoolean     = 0x01
	TypeString      = 0x02
	TypeObject      = 0x03
	TypeNull        = 0x05
	TypeUndefined   = 0x06
	TypeReference   = 0x07
	TypeEcmaArray   = 0x08
	TypeObjectEnd   = 0x09
	TypeStrictArray = 0x0A
	TypeDate        = 0x0B
	TypeLongString  = 0x0C
	TypeXml         = 0x0F
	TypeTypedObject = 0x10
	TypeAmf3Object  = 0x11
)

// ObjectEncoding selects how EncodeTop writes its argument.
type ObjectEncoding int

const (
	// AMF0 writes every value using the AMF0 marker set.
	AMF0 ObjectEncoding = iota
	// AMF3 writes the Amf3Object marker, then hands off to the AMF3
	// encoder for the value itself.
	AMF3
)

const maxShortStringLen = 0xFFFF
