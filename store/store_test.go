package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PresenceIsIndependentOfValue(t *testing.T) {
	s := New(map[string]any{
		"nil":   nil,
		"false": false,
		"zero":  0,
		"empty": "",
	})

	for _, key := range []string{"nil", "false", "zero", "empty"} {
		assert.True(t, s.Has(key), "Has(%q)", key)
	}
	assert.False(t, s.Has("missing"))
	assert.Nil(t, s.Get("missing"))
	assert.Equal(t, false, s.Get("false"))
}

func TestMap_NilMap(t *testing.T) {
	s := New(nil)
	assert.False(t, s.Has("a"))
	assert.Nil(t, s.Get("a"))
}

func TestLookup(t *testing.T) {
	s := New(map[string]any{"a": nil, "b": 2})

	m := Lookup(s, "a")
	assert.True(t, m.Found)
	assert.Nil(t, m.Value)

	m = Lookup(s, "b")
	assert.Equal(t, Match{Found: true, Value: 2}, m)

	assert.Equal(t, Match{}, Lookup(s, "c"))
	assert.Equal(t, Match{}, Lookup(nil, "c"))
}

func TestFromJSON(t *testing.T) {
	s, err := FromJSON([]byte(`{"user": {"age": 10, "tags": ["a", "b"]}, "flag": false}`))
	require.NoError(t, err)

	assert.True(t, s.Has("flag"))
	assert.Equal(t, map[string]any{
		"age":  10.0,
		"tags": []any{"a", "b"},
	}, s.Get("user"))

	_, err = FromJSON([]byte(`[1, 2]`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`null`))
	assert.Error(t, err)
}

func TestFromYAML(t *testing.T) {
	doc := `
user:
  age: 10
  tags: [a, b]
codes:
  1: one
flag: false
`
	s, err := FromYAML([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"age":  10,
		"tags": []any{"a", "b"},
	}, s.Get("user"))
	assert.Equal(t, map[string]any{"1": "one"}, s.Get("codes"))
	assert.Equal(t, false, s.Get("flag"))

	_, err = FromYAML([]byte(`- a`))
	assert.Error(t, err)
}
