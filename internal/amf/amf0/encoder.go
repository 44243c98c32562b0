package amf0

import (
	"reflect"
	"time"

	"rtmpenc/internal/amf"
	"rtmpenc/internal/amf/amf3"
	"rtmpenc/internal/rtmperr"
	"rtmpenc/internal/sink"
)

// Encoder implements the AMF0 encoder (component C4): per-type writers,
// a single object/string reference table, and the Amf3Object upgrade
// marker that hands off to a nested AMF3 encoder.
//
// Grounded on the host project's internal/core/protocol/amf0 package
// for the overall writer-table shape; this type adds the reference
// table and the AMF3 upgrade path that package never needed (it only
// ever wrote command/response argument lists, never arbitrary graphs).
type Encoder struct {
	s        *sink.Sink
	registry amf.ClassRegistry
	fallback amf.FallbackStrategy
	maxDepth int

	objects amf.RefTable[uintptr]

	amf3Enc *amf3.Encoder
}

// New creates an AMF0 encoder writing through s, resolving typed
// objects through registry, and applying fallback on a registry miss.
// maxDepth is forwarded to the nested AMF3 encoder used by the Amf3Object
// upgrade path (EncoderConfig.MaxExternalizableDepth); a non-positive
// value falls back to amf3's own default.
func New(s *sink.Sink, registry amf.ClassRegistry, fallback amf.FallbackStrategy, maxDepth int) *Encoder {
	return &Encoder{s: s, registry: registry, fallback: fallback, maxDepth: maxDepth}
}

// Reset clears the object reference table (and the nested AMF3
// encoder's tables, if it has been used) for a new encoding session.
func (e *Encoder) Reset() {
	e.objects.Reset()
	if e.amf3Enc != nil {
		e.amf3Enc.Reset()
	}
}

// innerAmf3 lazily constructs the nested AMF3 encoder used by
// EncodeTop's AMF3 upgrade path, sharing this Encoder's sink, registry,
// and fallback strategy.
func (e *Encoder) innerAmf3() *amf3.Encoder {
	if e.amf3Enc == nil {
		e.amf3Enc = amf3.New(e.s, e.registry, e.fallback, e.maxDepth)
	}
	return e.amf3Enc
}

// EncodeTop writes v as a top-level value under the given object
// encoding: AMF0 writes v directly through Encode; AMF3 writes the
// Amf3Object marker (0x11) and delegates the value itself to the
// nested AMF3 encoder (section 4.4's "object encoding upgrade").
func (e *Encoder) EncodeTop(v amf.Value, encoding ObjectEncoding) error {
	if encoding == AMF3 {
		if err := e.s.WriteByte(TypeAmf3Object); err != nil {
			return err
		}
		return e.innerAmf3().Encode(v)
	}
	return e.Encode(v)
}

// Encode writes v using the AMF0 marker set (section 4.3's writer
// table).
func (e *Encoder) Encode(v amf.Value) error {
	if v == nil {
		return e.s.WriteByte(TypeNull)
	}

	switch amf.Resolve(v) {
	case amf.KindBool:
		return e.encodeBool(reflect.ValueOf(v).Bool())
	case amf.KindInt, amf.KindEnum:
		return e.encodeNumber(float64(reflectInt(v)))
	case amf.KindDouble:
		return e.encodeNumber(reflectFloat(v))
	case amf.KindString:
		return e.encodeString(reflectString(v))
	case amf.KindDate:
		return e.encodeDate(v.(time.Time))
	case amf.KindXMLDocument:
		return e.withObjectRef(v, TypeXml, func() error {
			return e.writeLongString(string(v.(amf.XMLDocument)))
		})
	case amf.KindXMLElement:
		return e.withObjectRef(v, TypeXml, func() error {
			return e.writeLongString(string(v.(amf.XMLElement)))
		})
	case amf.KindByteArray:
		// AMF0 has no distinct byte-array marker; treat the payload as a
		// dense array of bytes, per the native-array fallback the
		// specification describes for this case.
		return e.encodeStrictArray(v, byteArrayAsValues(v))
	case amf.KindArray:
		return e.encodeStrictArray(v, toValueSlice(v))
	case amf.KindMap:
		return e.encodeEcmaArray(v, toMapEntries(v))
	case amf.KindDictionary:
		return &rtmperr.InvalidArgumentError{Op: "amf0.Encode", Err: errDictionaryUnsupported}
	case amf.KindTypedObject:
		to := v.(*amf.TypedObject)
		return e.withObjectRef(v, TypeTypedObject, func() error {
			return e.writeObjectBody(to.Class, to.Instance)
		})
	case amf.KindDynamicObject:
		dyn := v.(*amf.DynamicObject)
		return e.encodeDynamicObject(v, dyn)
	case amf.KindDefaultObject:
		return e.encodeDefaultObject(v)
	default:
		return &rtmperr.InvalidArgumentError{Op: "amf0.Encode", Err: errUnsupportedKind(v)}
	}
}

func (e *Encoder) encodeBool(b bool) error {
	if err := e.s.WriteByte(TypeBoolean); err != nil {
		return err
	}
	if b {
		return e.s.WriteByte(1)
	}
	return e.s.WriteByte(0)
}

func (e *Encoder) encodeNumber(f float64) error {
	if err := e.s.WriteByte(TypeNumber); err != nil {
		return err
	}
	return e.s.WriteF64BE(f)
}

// encodeString picks the Long String marker once the UTF-8 byte length
// of s exceeds the 16-bit short-string field (section 4.3's
// String/LongString row).
func (e *Encoder) encodeString(s string) error {
	if len(s) > maxShortStringLen {
		if err := e.s.WriteByte(TypeLongString); err != nil {
			return err
		}
		return e.writeLongStringBody(s)
	}
	if err := e.s.WriteByte(TypeString); err != nil {
		return err
	}
	return e.writeShortStringBody(s)
}

func (e *Encoder) writeShortStringBody(s string) error {
	if err := e.s.WriteU16BE(uint16(len(s))); err != nil {
		return err
	}
	return e.s.WriteBytes([]byte(s), 0, len(s))
}

func (e *Encoder) writeLongStringBody(s string) error {
	if err := e.s.WriteU32BE(uint32(len(s))); err != nil {
		return err
	}
	return e.s.WriteBytes([]byte(s), 0, len(s))
}

// writeLongString writes the LongString marker is already emitted by
// the caller; this only writes the length-prefixed body, reused by Xml
// (which always uses the 32-bit length form regardless of size).
func (e *Encoder) writeLongString(s string) error {
	return e.writeLongStringBody(s)
}

// encodeDate writes the Date marker, the millisecond-since-epoch
// double, and the mandatory (always-zero) 2-byte UTC offset pad
// (section 4.3's Date row).
func (e *Encoder) encodeDate(t time.Time) error {
	if err := e.s.WriteByte(TypeDate); err != nil {
		return err
	}
	if err := e.s.WriteF64BE(amf.Date(t)); err != nil {
		return err
	}
	return e.s.WriteU16BE(0)
}

// encodeStrictArray implements the dense-array writer: the object
// reference table check, inline_header is not used in AMF0 — length is
// a plain 32-bit count — then each element in order.
func (e *Encoder) encodeStrictArray(orig amf.Value, items []amf.Value) error {
	return e.withObjectRef(orig, TypeStrictArray, func() error {
		if err := e.s.WriteU32BE(uint32(len(items))); err != nil {
			return err
		}
		for _, item := range items {
			if err := e.Encode(item); err != nil {
				return err
			}
		}
		return nil
	})
}

// encodeEcmaArray implements the string-keyed map writer: a 32-bit
// approximate-count field, then (name, value)* pairs, terminated by the
// empty-name/ObjectEnd sentinel (section 4.3's EcmaArray row).
func (e *Encoder) encodeEcmaArray(orig amf.Value, m amf.Map) error {
	return e.withObjectRef(orig, TypeEcmaArray, func() error {
		if err := e.s.WriteU32BE(uint32(len(m))); err != nil {
			return err
		}
		for _, entry := range m {
			if err := e.writePropertyName(entry.Key); err != nil {
				return err
			}
			if err := e.Encode(entry.Value); err != nil {
				return err
			}
		}
		return e.writeObjectEnd()
	})
}

// encodeDynamicObject writes an anonymous object with no class name as
// a plain Object (not TypedObject); one that carries a class name is
// written as a TypedObject.
func (e *Encoder) encodeDynamicObject(orig amf.Value, v *amf.DynamicObject) error {
	desc := &amf.ClassDescription{Name: v.ClassName}
	marker := byte(TypeObject)
	if v.ClassName != "" {
		marker = TypeTypedObject
	}
	return e.withObjectRef(orig, marker, func() error {
		return e.writeObjectBody(desc, v.Fields)
	})
}

// encodeDefaultObject implements the dispatcher's fallback path: ask
// the registry; on a miss, either fail (ExceptionFallback) or reflect
// the value's exported fields into an anonymous dynamic object
// (DynamicObjectFallback).
func (e *Encoder) encodeDefaultObject(v amf.Value) error {
	if desc, ok := e.registry.Describe(v); ok {
		return e.withObjectRef(v, TypeTypedObject, func() error {
			return e.writeObjectBody(desc, v)
		})
	}
	if e.fallback == amf.ExceptionFallback {
		return &rtmperr.MissingClassDescriptionError{Op: "amf0.encodeDefaultObject", TypeName: typeName(v)}
	}
	fields := amf.ReflectFields(v)
	return e.encodeDynamicObject(v, &amf.DynamicObject{Fields: fields})
}

// writeObjectBody writes the Object/TypedObject body: the class name
// (TypedObject only), then (name, value)* pairs for desc.Members and,
// if the value also carries a Map of extra fields (instance is
// amf.Map), those as well, terminated by the ObjectEnd sentinel.
func (e *Encoder) writeObjectBody(desc *amf.ClassDescription, instance interface{}) error {
	if desc.Name != "" {
		if err := e.writeShortStringBody(desc.Name); err != nil {
			return err
		}
	}
	for _, m := range desc.Members {
		if err := e.writePropertyName(m.Name); err != nil {
			return err
		}
		if err := e.Encode(m.Get(instance)); err != nil {
			return err
		}
	}
	if fields, ok := instance.(amf.Map); ok {
		for _, entry := range fields {
			if err := e.writePropertyName(entry.Key); err != nil {
				return err
			}
			if err := e.Encode(entry.Value); err != nil {
				return err
			}
		}
	}
	return e.writeObjectEnd()
}

// writePropertyName writes a bare UTF-8 property name: a 16-bit length
// prefix with no leading type marker (distinct from a String value).
func (e *Encoder) writePropertyName(name string) error {
	return e.writeShortStringBody(name)
}

// writeObjectEnd writes the empty-name + ObjectEnd-marker sentinel that
// terminates Object, TypedObject, and EcmaArray bodies.
func (e *Encoder) writeObjectEnd() error {
	if err := e.s.WriteU16BE(0); err != nil {
		return err
	}
	return e.s.WriteByte(TypeObjectEnd)
}

// withObjectRef implements AMF0's single object reference table
// (section 3): a composite value already seen in this session is
// written as a Reference marker + its index; otherwise it is inserted
// before its body is recursively emitted, then the marker and body are
// written.
func (e *Encoder) withObjectRef(v amf.Value, marker byte, body func() error) error {
	key, hasIdentity := amf.IdentityKey(v)
	if hasIdentity {
		if idx, ok := e.objects.Lookup(key); ok {
			if err := e.s.WriteByte(TypeReference); err != nil {
				return err
			}
			return e.s.WriteU16BE(uint16(idx))
		}
		e.objects.Insert(key)
	}
	if err := e.s.WriteByte(marker); err != nil {
		return err
	}
	return body()
}
