package amf3

import (
	"errors"
	"fmt"
	"reflect"

	"rtmpenc/internal/amf"
)

var (
	errNotExternalizable = errors.New("amf3: class marked externalizable but value does not implement Externalizable")
	errNotDynamicMap     = errors.New("amf3: class marked dynamic but instance is not an amf.Map")
	errMaxDepthExceeded  = errors.New("amf3: externalizable recursion exceeded max depth")
)

func errUnsupportedKind(v amf.Value) error {
	return fmt.Errorf("amf3: no writer for %s", typeName(v))
}

func typeName(v amf.Value) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

// reflectInt extracts an integer value from the exact types Resolve
// maps to KindInt/KindEnum plus the reflect.Kind fallback (any other
// named integer type).
func reflectInt(v amf.Value) int64 {
	switch x := v.(type) {
	case int32:
		return int64(x)
	case amf.Enum:
		return int64(x)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	default:
		return 0
	}
}

// reflectFloat extracts a float value from the exact float64 type plus
// the reflect.Kind fallback (e.g. a named float32 type).
func reflectFloat(v amf.Value) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64 {
		return rv.Float()
	}
	return 0
}

// reflectString extracts a string value from the exact string type plus
// the reflect.Kind fallback (a named string type).
func reflectString(v amf.Value) string {
	if s, ok := v.(string); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return fmt.Sprint(v)
}

// toValueSlice extracts an ordered element list from the exact
// amf.Array type plus the reflect.Kind fallback (any other named slice
// or array type).
func toValueSlice(v amf.Value) []amf.Value {
	if arr, ok := v.(amf.Array); ok {
		return []amf.Value(arr)
	}
	rv := reflect.ValueOf(v)
	out := make([]amf.Value, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// toByteSlice extracts a raw byte payload from the exact amf.ByteArray
// type plus the reflect.Kind fallback (any other named byte-slice
// type).
func toByteSlice(v amf.Value) []byte {
	if ba, ok := v.(amf.ByteArray); ok {
		return []byte(ba)
	}
	rv := reflect.ValueOf(v)
	out := make([]byte, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = byte(rv.Index(i).Uint())
	}
	return out
}

// toMapEntries extracts ordered (key, value) pairs from the exact
// amf.Map type plus the reflect.Kind fallback (a plain Go map). The
// fallback path inherits Go's randomized map iteration order — callers
// that need deterministic wire output must use amf.Map directly.
func toMapEntries(v amf.Value) amf.Map {
	if m, ok := v.(amf.Map); ok {
		return m
	}
	rv := reflect.ValueOf(v)
	var m amf.Map
	iter := rv.MapRange()
	for iter.Next() {
		m = append(m, amf.MapEntry{Key: fmt.Sprint(iter.Key().Interface()), Value: iter.Value().Interface()})
	}
	return m
}
