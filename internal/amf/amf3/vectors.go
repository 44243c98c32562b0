package amf3

import (
	"reflect"

	"rtmpenc/internal/amf"
)

// VectorInt, VectorUInt, VectorDouble, and VectorObject are the
// optional Flash-10 vector types (section 6's marker table, 0x0D-0x10).
// They live in this package rather than the shared value model because
// the specification marks them optional and registerable at runtime;
// an application that never uses them never imports these types.
//
// Vectors are Go value types, not pointers, so amf.IdentityKey never
// reports an identity for them: this encoder always writes a vector
// inline and never tracks it in the object reference table. Real Flash
// player output does intern vectors by reference, but nothing in this
// package's test vectors or call sites relies on vector aliasing, so
// the simpler always-inline behavior is what registerBuiltinVectors
// below implements.
type VectorInt struct {
	Items     []int32
	FixedSize bool
}

type VectorUInt struct {
	Items     []uint32
	FixedSize bool
}

type VectorDouble struct {
	Items     []float64
	FixedSize bool
}

// VectorObject is a vector of typed objects sharing one ActionScript
// class name (empty for "*", i.e. no common base type).
type VectorObject struct {
	TypeName  string
	Items     []amf.Value
	FixedSize bool
}

// registerBuiltinVectors wires the four Flash-10 vector types into this
// Encoder's extension table, demonstrating the runtime-registration
// mechanism the specification calls for: application code can call
// RegisterExt the same way for its own vector-like types.
func (e *Encoder) registerBuiltinVectors() {
	e.RegisterExt(reflect.TypeOf(VectorInt{}), func(e *Encoder, v amf.Value) error {
		vec := v.(VectorInt)
		return e.writeVectorHeader(TypeVectorInt, len(vec.Items), vec.FixedSize, nil, func() error {
			for _, n := range vec.Items {
				if err := e.s.WriteI32BE(n); err != nil {
					return err
				}
			}
			return nil
		})
	})
	e.RegisterExt(reflect.TypeOf(VectorUInt{}), func(e *Encoder, v amf.Value) error {
		vec := v.(VectorUInt)
		return e.writeVectorHeader(TypeVectorUInt, len(vec.Items), vec.FixedSize, nil, func() error {
			for _, n := range vec.Items {
				if err := e.s.WriteU32BE(n); err != nil {
					return err
				}
			}
			return nil
		})
	})
	e.RegisterExt(reflect.TypeOf(VectorDouble{}), func(e *Encoder, v amf.Value) error {
		vec := v.(VectorDouble)
		return e.writeVectorHeader(TypeVectorDouble, len(vec.Items), vec.FixedSize, nil, func() error {
			for _, f := range vec.Items {
				if err := e.s.WriteF64BE(f); err != nil {
					return err
				}
			}
			return nil
		})
	})
	e.RegisterExt(reflect.TypeOf(VectorObject{}), func(e *Encoder, v amf.Value) error {
		vec := v.(VectorObject)
		typeName := vec.TypeName
		if typeName == "" {
			typeName = "*"
		}
		return e.writeVectorHeader(TypeVectorObject, len(vec.Items), vec.FixedSize, &typeName, func() error {
			for _, item := range vec.Items {
				if err := e.Encode(item); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// writeVectorHeader writes the common vector prefix: marker,
// inline_header(len), a 1-byte fixed/variable flag, and (for
// VectorObject only) the element type name, then invokes body to emit
// the elements themselves.
func (e *Encoder) writeVectorHeader(marker byte, n int, fixed bool, typeName *string, body func() error) error {
	if err := e.s.WriteByte(marker); err != nil {
		return err
	}
	if err := e.writeInlineHeader(uint32(n)); err != nil {
		return err
	}
	fixedByte := byte(0)
	if fixed {
		fixedByte = 1
	}
	if err := e.s.WriteByte(fixedByte); err != nil {
		return err
	}
	if typeName != nil {
		if err := e.writeAmf3String(*typeName); err != nil {
			return err
		}
	}
	return body()
}
