package amf

import "testing"

type namedInt int32
type namedSlice []string

func TestResolveExactTypes(t *testing.T) {
	cases := []struct {
		v    Value
		want Kind
	}{
		{nil, KindNull},
		{true, KindBool},
		{int32(5), KindInt},
		{float64(5), KindDouble},
		{"hi", KindString},
		{Enum(2), KindEnum},
		{ByteArray{1, 2}, KindByteArray},
		{Array{1, 2}, KindArray},
		{Map{{Key: "a", Value: 1}}, KindMap},
		{Dictionary{{Key: "a", Value: 1}}, KindDictionary},
		{&TypedObject{}, KindTypedObject},
		{&DynamicObject{}, KindDynamicObject},
	}
	for _, c := range cases {
		if got := Resolve(c.v); got != c.want {
			t.Errorf("Resolve(%#v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestResolveReflectKindFallback(t *testing.T) {
	if got := Resolve(namedInt(3)); got != KindInt {
		t.Errorf("Resolve(namedInt) = %v, want KindInt", got)
	}
	if got := Resolve(namedSlice{"a"}); got != KindArray {
		t.Errorf("Resolve(namedSlice) = %v, want KindArray", got)
	}
}

func TestResolveMemoizesFallback(t *testing.T) {
	// First call scans via reflect.Kind, second call must hit the memo
	// table and return the same Kind.
	first := Resolve(namedInt(1))
	second := Resolve(namedInt(2))
	if first != second {
		t.Errorf("Resolve(namedInt) inconsistent across calls: %v vs %v", first, second)
	}
}

type plainStruct struct{ A int }

func TestResolveStructFallsBackToDefaultObject(t *testing.T) {
	if got := Resolve(plainStruct{A: 1}); got != KindDefaultObject {
		t.Errorf("Resolve(plainStruct) = %v, want KindDefaultObject", got)
	}
}
