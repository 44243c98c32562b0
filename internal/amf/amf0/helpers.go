package amf0

import (
	"errors"
	"fmt"
	"reflect"

	"rtmpenc/internal/amf"
)

var errDictionaryUnsupported = errors.New("amf0: Dictionary has no AMF0 wire representation")

func errUnsupportedKind(v amf.Value) error {
	return fmt.Errorf("amf0: no writer for %s", typeName(v))
}

func typeName(v amf.Value) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

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

// byteArrayAsValues implements AMF0's byte-array fallback: each byte is
// boxed as its own Number value and the whole thing is written as a
// dense array (section 4.3's byte array row: AMF0 has no distinct
// marker and uses a native array).
func byteArrayAsValues(v amf.Value) []amf.Value {
	var b []byte
	if ba, ok := v.(amf.ByteArray); ok {
		b = []byte(ba)
	} else {
		rv := reflect.ValueOf(v)
		b = make([]byte, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			b[i] = byte(rv.Index(i).Uint())
		}
	}
	out := make([]amf.Value, len(b))
	for i, by := range b {
		out[i] = int32(by)
	}
	return out
}

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
