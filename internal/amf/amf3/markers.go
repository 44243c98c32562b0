// Package amf3 implements the AMF3 encoder (component C5): per-type
// writers, separate object/string/class-definition reference tables,
// trait serialization, externalizable dispatch, and the optional
// Flash-10 vector/dictionary types. Output matches Adobe's
// amf3_spec_121207 type markers.
//
// Grounded on the ssungk-ertmp AMF3 encoder found in the example pool
// (pkg/amf/amf3_encoder.go) for the U29/string-table/object shape; that
// reference implementation deliberately skips the object reference
// table ("does not use object reference table, always encode as
// inline") and keys traits off nothing at all. This package adds the
// object reference table, a real class-definition reference table
// keyed on ClassDescription identity, externalizable dispatch, and
// vectors/dictionary that the reference file leaves out, per the full
// specification.
package amf3

// Type markers, per Adobe amf3_spec_121207.
const (
	TypeUndefined = 0x00
	TypeNull      = 0x01
	TypeFalse     = 0x02
	TypeTrue      = 0x03
	TypeInteger   = 0x04
	TypeDouble    = 0x05
	TypeString    = 0x06
	TypeXml       = 0x07
	TypeDate      = 0x08
	TypeArray     = 0x09
	TypeObject    = 0x0A
	// 0x0B is unassigned in the marker set this encoder targets.
	TypeByteArray    = 0x0C
	TypeVectorInt    = 0x0D
	TypeVectorUInt   = 0x0E
	TypeVectorDouble = 0x0F
	TypeVectorObject = 0x10
	TypeDictionary   = 0x11
)

// Integer range AMF3's Integer marker can represent; outside this range
// a value is encoded as Double instead (section 4.3 "large/float
// integer" row).
const (
	minAmf3Integer = -0x10000000
	maxAmf3Integer = 0x0FFFFFFF
)
