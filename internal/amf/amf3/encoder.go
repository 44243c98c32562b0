package amf3

import (
	"reflect"
	"time"

	"rtmpenc/internal/amf"
	"rtmpenc/internal/rtmperr"
	"rtmpenc/internal/sink"
)

// Externalizable is implemented by application values whose AMF3 body
// is self-serialized rather than member-by-member. The encoder hands
// back a re-entrant handle (the Encoder itself) so the value can emit
// nested AMF3 values through the same reference tables.
type Externalizable interface {
	WriteExternal(enc *Encoder) error
}

// defaultMaxDepth guards externalizable recursion (design note, section
// 9): a value's WriteExternal may itself encode a value whose class is
// externalizable, and so on; this bounds how deep that can go before
// emission fails instead of overflowing the goroutine stack.
const defaultMaxDepth = 64

// extWriter is the signature for a runtime-registered extension writer,
// used by the optional Flash-10 vector/dictionary support.
type extWriter func(e *Encoder, v amf.Value) error

// Encoder implements the AMF3 encoder (C5). A single Encoder instance
// holds one encoding session's reference tables; call Reset between
// independent sessions (e.g. between RTMP message bodies) rather than
// allocating a new Encoder, or construct a fresh one per session — both
// give an empty set of tables.
type Encoder struct {
	s        *sink.Sink
	registry amf.ClassRegistry
	fallback amf.FallbackStrategy

	objects amf.RefTable[uintptr]
	strings amf.RefTable[string]
	classes amf.RefTable[*amf.ClassDescription]
	dates   amf.RefTable[int64]

	depth    int
	maxDepth int

	ext map[reflect.Type]extWriter
}

// New creates an AMF3 encoder writing through s, resolving typed
// objects through registry, and applying fallback when registry has no
// description for a value.
// maxDepth configures the externalizable recursion guard (section 9's
// design note); the host program passes EncoderConfig.MaxExternalizableDepth
// (checked positive in config/validate.go) through message.NewCodecs. A
// non-positive value falls back to defaultMaxDepth.
func New(s *sink.Sink, registry amf.ClassRegistry, fallback amf.FallbackStrategy, maxDepth int) *Encoder {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	e := &Encoder{s: s, registry: registry, fallback: fallback, maxDepth: maxDepth}
	e.registerBuiltinVectors()
	return e
}

// Reset clears all four reference tables (object, string, class, date)
// for a new encoding session.
func (e *Encoder) Reset() {
	e.objects.Reset()
	e.strings.Reset()
	e.classes.Reset()
	e.dates.Reset()
	e.depth = 0
}

// RegisterExt installs a writer for an application-defined Go type not
// covered by the dispatcher in package amf — the extension point the
// specification describes for Flash-10 vectors and dictionaries beyond
// the built-in ones this package already registers.
func (e *Encoder) RegisterExt(t reflect.Type, w func(e *Encoder, v amf.Value) error) {
	if e.ext == nil {
		e.ext = make(map[reflect.Type]extWriter)
	}
	e.ext[t] = w
}

// Encode writes v as a single AMF3 value.
func (e *Encoder) Encode(v amf.Value) error {
	if v == nil {
		return e.s.WriteByte(TypeNull)
	}
	if w, ok := e.ext[reflect.TypeOf(v)]; ok {
		return w(e, v)
	}

	switch amf.Resolve(v) {
	case amf.KindBool:
		return e.encodeBool(reflect.ValueOf(v).Bool())
	case amf.KindInt:
		return e.encodeIntLike(v)
	case amf.KindEnum:
		return e.encodeIntLike(v)
	case amf.KindDouble:
		return e.encodeDoubleLike(v)
	case amf.KindString:
		return e.encodeStringValue(v)
	case amf.KindDate:
		return e.encodeDate(v.(time.Time))
	case amf.KindXMLDocument:
		return e.encodeXml(string(v.(amf.XMLDocument)))
	case amf.KindXMLElement:
		return e.encodeXml(string(v.(amf.XMLElement)))
	case amf.KindByteArray:
		return e.encodeByteArray(v)
	case amf.KindArray:
		return e.encodeArray(v)
	case amf.KindMap:
		return e.encodeAssociativeArray(v, toMapEntries(v))
	case amf.KindDictionary:
		return e.encodeDictionary(v.(amf.Dictionary))
	case amf.KindTypedObject:
		return e.encodeTypedObject(v.(*amf.TypedObject))
	case amf.KindDynamicObject:
		return e.encodeDynamicObject(v.(*amf.DynamicObject))
	case amf.KindDefaultObject:
		return e.encodeDefaultObject(v)
	default:
		return &rtmperr.InvalidArgumentError{Op: "amf3.Encode", Err: errUnsupportedKind(v)}
	}
}

func (e *Encoder) encodeBool(b bool) error {
	if b {
		return e.s.WriteByte(TypeTrue)
	}
	return e.s.WriteByte(TypeFalse)
}

// encodeIntLike handles KindInt/KindEnum: Integer when the value fits
// AMF3's 29-bit signed range, Double otherwise (section 4.3, "large/
// float integer" row).
func (e *Encoder) encodeIntLike(v amf.Value) error {
	n := reflectInt(v)
	if n < minAmf3Integer || n > maxAmf3Integer {
		if err := e.s.WriteByte(TypeDouble); err != nil {
			return err
		}
		return e.s.WriteF64BE(float64(n))
	}
	if err := e.s.WriteByte(TypeInteger); err != nil {
		return err
	}
	return e.writeU29(uint32(int32(n)))
}

func (e *Encoder) encodeDoubleLike(v amf.Value) error {
	f := reflectFloat(v)
	if err := e.s.WriteByte(TypeDouble); err != nil {
		return err
	}
	return e.s.WriteF64BE(f)
}

// encodeStringValue writes the String marker then the AMF3-string body.
func (e *Encoder) encodeStringValue(v amf.Value) error {
	if err := e.s.WriteByte(TypeString); err != nil {
		return err
	}
	return e.writeAmf3String(reflectString(v))
}

// writeAmf3String implements the section 4.2 AMF3 string primitive: the
// empty string is always inline and never interned; a non-empty string
// already in the table is a reference, otherwise it is inserted and
// written inline.
func (e *Encoder) writeAmf3String(s string) error {
	if s == "" {
		return e.writeInlineHeader(0)
	}
	if idx, ok := e.strings.Lookup(s); ok {
		return e.writeRef(uint32(idx))
	}
	e.strings.Insert(s)
	if err := e.writeInlineHeader(uint32(len(s))); err != nil {
		return err
	}
	return e.s.WriteBytes([]byte(s), 0, len(s))
}

func (e *Encoder) encodeXml(body string) error {
	if err := e.s.WriteByte(TypeXml); err != nil {
		return err
	}
	return e.writeAmf3String(body)
}

// encodeDate implements section 4.2: inline_header(0) prefix, then the
// reference table keyed on the date VALUE (milliseconds since epoch) —
// unlike the object table, which is keyed by identity.
func (e *Encoder) encodeDate(t time.Time) error {
	if err := e.s.WriteByte(TypeDate); err != nil {
		return err
	}
	ms := t.UnixMilli()
	if idx, ok := e.dates.Lookup(ms); ok {
		return e.writeRef(uint32(idx))
	}
	e.dates.Insert(ms)
	if err := e.writeInlineHeader(0); err != nil {
		return err
	}
	return e.s.WriteF64BE(amf.Date(t))
}

func (e *Encoder) encodeByteArray(v amf.Value) error {
	return e.withObjectRef(v, TypeByteArray, func() error {
		b := toByteSlice(v)
		if err := e.writeInlineHeader(uint32(len(b))); err != nil {
			return err
		}
		return e.s.WriteBytes(b, 0, len(b))
	})
}

// encodeArray implements the dense-array writer: inline_header(len),
// the associative terminator (empty string), then len items in order.
func (e *Encoder) encodeArray(v amf.Value) error {
	items := toValueSlice(v)
	return e.withObjectRef(v, TypeArray, func() error {
		if err := e.writeInlineHeader(uint32(len(items))); err != nil {
			return err
		}
		if err := e.writeAmf3String(""); err != nil {
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

// encodeAssociativeArray implements the string-keyed map writer: marker
// Array, inline_header(0) (no dense items), then (key,value)* pairs
// terminated by an empty-string key.
func (e *Encoder) encodeAssociativeArray(orig amf.Value, m amf.Map) error {
	return e.withObjectRef(orig, TypeArray, func() error {
		if err := e.writeInlineHeader(0); err != nil {
			return err
		}
		for _, entry := range m {
			if err := e.writeAmf3String(entry.Key); err != nil {
				return err
			}
			if err := e.Encode(entry.Value); err != nil {
				return err
			}
		}
		return e.writeAmf3String("")
	})
}

// encodeDictionary implements the arbitrary-keyed map writer:
// inline_header(count) + a 1-byte weak-refs flag (always 0, this
// encoder never creates weak references) + (key,value)* pairs.
func (e *Encoder) encodeDictionary(d amf.Dictionary) error {
	return e.withObjectRef(amf.Value(d), TypeDictionary, func() error {
		if err := e.writeInlineHeader(uint32(len(d))); err != nil {
			return err
		}
		if err := e.s.WriteByte(0); err != nil {
			return err
		}
		for _, entry := range d {
			if err := e.Encode(entry.Key); err != nil {
				return err
			}
			if err := e.Encode(entry.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// encodeTypedObject implements the class-described object writer,
// including externalizable dispatch and class-definition reuse.
func (e *Encoder) encodeTypedObject(v *amf.TypedObject) error {
	return e.withObjectRef(amf.Value(v), TypeObject, func() error {
		return e.writeObjectBody(v.Class, v.Instance)
	})
}

// encodeDynamicObject implements an anonymous object with a dynamic
// string-keyed trailer: a single member-less, dynamic, non-
// externalizable trait, described solely by ClassName (possibly empty)
// and the Fields map.
func (e *Encoder) encodeDynamicObject(v *amf.DynamicObject) error {
	desc := &amf.ClassDescription{Name: v.ClassName, IsDynamic: true}
	return e.withObjectRef(amf.Value(v), TypeObject, func() error {
		return e.writeObjectBody(desc, v.Fields)
	})
}

// encodeDefaultObject implements the dispatcher's fallback path
// (section 4.3 step 3): ask the registry; on a miss, either fail
// (ExceptionFallback) or reflect the value's exported fields into an
// anonymous dynamic object (DynamicObjectFallback).
func (e *Encoder) encodeDefaultObject(v amf.Value) error {
	if desc, ok := e.registry.Describe(v); ok {
		return e.withObjectRef(v, TypeObject, func() error {
			return e.writeObjectBody(desc, v)
		})
	}
	if e.fallback == amf.ExceptionFallback {
		return &rtmperr.MissingClassDescriptionError{Op: "amf3.encodeDefaultObject", TypeName: typeName(v)}
	}
	fields := amf.ReflectFields(v)
	dyn := &amf.DynamicObject{Fields: fields}
	return e.encodeDynamicObject(dyn)
}

// writeObjectBody writes the traits header, then either delegates to
// Externalizable.WriteExternal or walks desc.Members followed by the
// dynamic trailer.
func (e *Encoder) writeObjectBody(desc *amf.ClassDescription, instance interface{}) error {
	if idx, ok := e.classes.Lookup(desc); ok {
		// Class-definition reuse: (idx<<2)|0b01.
		if err := e.writeU29(uint32(idx)<<2 | 0x01); err != nil {
			return err
		}
	} else {
		e.classes.Insert(desc)
		header := uint32(len(desc.Members))<<4 | b2u(desc.IsDynamic)<<3 | b2u(desc.IsExternalizable)<<2 | 0x03
		if err := e.writeU29(header); err != nil {
			return err
		}
		if err := e.writeAmf3String(desc.Name); err != nil {
			return err
		}
		for _, m := range desc.Members {
			if err := e.writeAmf3String(m.Name); err != nil {
				return err
			}
		}
	}

	if desc.IsExternalizable {
		ext, ok := instance.(Externalizable)
		if !ok {
			return &rtmperr.MissingClassDescriptionError{Op: "amf3.writeObjectBody", TypeName: desc.Name,
				Err: errNotExternalizable}
		}
		e.depth++
		defer func() { e.depth-- }()
		if e.depth > e.maxDepth {
			return &rtmperr.InvalidArgumentError{Op: "amf3.writeObjectBody", Err: errMaxDepthExceeded}
		}
		return ext.WriteExternal(e)
	}

	for _, m := range desc.Members {
		if err := e.Encode(m.Get(instance)); err != nil {
			return err
		}
	}

	if desc.IsDynamic {
		fields, ok := instance.(amf.Map)
		if !ok {
			return &rtmperr.MissingClassDescriptionError{Op: "amf3.writeObjectBody", TypeName: desc.Name,
				Err: errNotDynamicMap}
		}
		for _, entry := range fields {
			if err := e.writeAmf3String(entry.Key); err != nil {
				return err
			}
			if err := e.Encode(entry.Value); err != nil {
				return err
			}
		}
		return e.writeAmf3String("")
	}
	return nil
}

// withObjectRef implements the composite-writer pattern every AMF3
// reference-tracked type uses: check the table, emit a reference and
// return on a hit; otherwise insert (before recursing, per section 3's
// insert-then-recurse invariant) and write the marker + body.
func (e *Encoder) withObjectRef(v amf.Value, marker byte, body func() error) error {
	key, hasIdentity := amf.IdentityKey(v)
	if hasIdentity {
		if idx, ok := e.objects.Lookup(key); ok {
			if err := e.s.WriteByte(marker); err != nil {
				return err
			}
			return e.writeRef(uint32(idx))
		}
		e.objects.Insert(key)
	}
	if err := e.s.WriteByte(marker); err != nil {
		return err
	}
	return body()
}

func (e *Encoder) writeU29(v uint32) error {
	b := amf.EncodeU29(v)
	return e.s.WriteBytes(b, 0, len(b))
}

func (e *Encoder) writeInlineHeader(n uint32) error {
	b := amf.InlineHeader(n)
	return e.s.WriteBytes(b, 0, len(b))
}

func (e *Encoder) writeRef(i uint32) error {
	b := amf.Ref(i)
	return e.s.WriteBytes(b, 0, len(b))
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
