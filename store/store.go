// Package store provides the key lookup used by the resolver to find raw
// input values by parameter name.
//
// Lookups follow own-key semantics: a key is present when the underlying
// map has an entry for it, whatever the value. nil, false, 0 and "" are
// all present values.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Store maps top-level names to raw values.
type Store interface {
	// Has reports whether name is present, independent of its value.
	Has(name string) bool
	// Get returns the value for name, or nil when it is absent.
	Get(name string) any
}

// Map is a Store over a plain map.
type Map map[string]any

// New wraps data as a Store. A nil map behaves as an empty store.
func New(data map[string]any) Map {
	return Map(data)
}

// Has implements Store.
func (m Map) Has(name string) bool {
	_, ok := m[name]
	return ok
}

// Get implements Store.
func (m Map) Get(name string) any {
	return m[name]
}

// Match is the outcome of a Lookup.
type Match struct {
	Found bool
	Value any
}

// Lookup searches s for name, keeping presence separate from the value.
func Lookup(s Store, name string) Match {
	if s == nil || !s.Has(name) {
		return Match{}
	}
	return Match{Found: true, Value: s.Get(name)}
}

// FromJSON decodes a JSON object into a Map. Numbers decode as float64.
func FromJSON(data []byte) (Map, error) {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode json store: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("decode json store: document is not an object")
	}
	return Map(m), nil
}

// FromYAML decodes a YAML mapping into a Map. Nested mappings become
// map[string]any and sequences []any, matching FromJSON.
func FromYAML(data []byte) (Map, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode yaml store: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("decode yaml store: document is not a mapping")
	}
	return Map(normalize(m).(map[string]any)), nil
}

// normalize converts the map[any]any values yaml produces for non-string
// keys into map[string]any so objects resolve uniformly.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
