package paramcheck

// Marker is a sentinel value placed into resolved structures.
type Marker struct {
	name string
}

func (m *Marker) String() string {
	return m.name
}

// MarshalJSON encodes markers as null.
func (m *Marker) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

var (
	// Invalid fills the slot of an array element or object property whose
	// resolution failed, so containers keep their shape.
	Invalid = &Marker{name: "<invalid>"}

	// Missing is the value of an execution node whose parameter was absent.
	Missing = &Marker{name: "<missing>"}
)

// IsInvalid reports whether v is the Invalid marker.
func IsInvalid(v any) bool {
	m, ok := v.(*Marker)
	return ok && m == Invalid
}

// IsMissing reports whether v is the Missing marker.
func IsMissing(v any) bool {
	m, ok := v.(*Marker)
	return ok && m == Missing
}

// ResolveResult pairs the raw input of a resolved value with its
// sanitized form. For objects and arrays both sides are containers of the
// same shape.
type ResolveResult struct {
	Raw       any
	Sanitized any
}
