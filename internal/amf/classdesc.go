package amf

// Member describes one ordered slot of a ClassDescription: its
// serialized name and an accessor that reads the corresponding value
// off a host instance.
type Member struct {
	Name string
	Get  func(instance interface{}) Value
}

// ClassDescription is the encoder's view of a named type's member
// layout and flags, as returned by a ClassRegistry. Identity matters:
// the AMF3 class-definition reference table (section 3) keys on
// ClassDescription pointer identity, not on Name equality, so the same
// *ClassDescription instance must be reused across an encoding session
// for trait reuse to be detected.
type ClassDescription struct {
	Name             string
	Members          []Member
	IsDynamic        bool
	IsExternalizable bool
}

// FallbackStrategy controls what happens when a ClassRegistry has no
// description for a value.
type FallbackStrategy int

const (
	// DynamicObjectFallback encodes values with no class description as
	// anonymous dynamic objects.
	DynamicObjectFallback FallbackStrategy = iota
	// ExceptionFallback fails emission with MissingClassDescriptionError
	// when no class description is available.
	ExceptionFallback
)

// ClassRegistry is the type-registry oracle the encoder core consumes.
// It is supplied by the host application; the core never inspects Go
// types directly to decide how to serialize a typed object, it always
// asks the registry.
type ClassRegistry interface {
	// Describe returns the ClassDescription for v, or ok=false if the
	// registry has no description (the caller applies FallbackStrategy).
	Describe(v Value) (desc *ClassDescription, ok bool)
}

// NopRegistry is a ClassRegistry with no registered types; every
// Describe call returns ok=false. Useful for encoders that only ever
// see Array/Map/DynamicObject values and never *TypedObject.
type NopRegistry struct{}

// Describe always returns (nil, false).
func (NopRegistry) Describe(Value) (*ClassDescription, bool) { return nil, false }

// MapRegistry resolves *TypedObject values by looking up their
// Class field directly, ignoring v's Go type. It exists for the common
// case where callers already attach the ClassDescription to the value
// (amf.TypedObject) instead of maintaining an external type→description
// table.
type MapRegistry struct{}

// Describe returns v.Class when v is a *TypedObject with a non-nil
// Class, otherwise ok=false.
func (MapRegistry) Describe(v Value) (*ClassDescription, bool) {
	if to, ok := v.(*TypedObject); ok && to.Class != nil {
		return to.Class, true
	}
	return nil, false
}
