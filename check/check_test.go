package check

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Code
}

func TestString(t *testing.T) {
	s, err := String("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	_, err = String(12)
	assert.Equal(t, CodeString, codeOf(t, err))
	assert.Equal(t, "type.string", err.Error())

	_, err = NonEmptyString("  ")
	assert.Equal(t, CodeNotEmpty, codeOf(t, err))
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{1, "1"},
		{int64(-3), "-3"},
		{uint8(200), "200"},
		{2.5, "2.5"},
		{float32(0.5), "0.5"},
		{json.Number("10.125"), "10.125"},
		{decimal.RequireFromString("7.70"), "7.7"},
	}

	for _, tt := range tests {
		d, err := Decimal(tt.in)
		require.NoError(t, err, "Decimal(%#v)", tt.in)
		assert.Equal(t, tt.want, d.String(), "Decimal(%#v)", tt.in)
	}

	for _, bad := range []any{"1", nil, true, json.Number("x")} {
		_, err := Decimal(bad)
		assert.Equal(t, CodeNumber, codeOf(t, err), "Decimal(%#v)", bad)
	}
}

func TestNumberAndInteger(t *testing.T) {
	f, err := Number(3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	i, err := Integer(4.0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), i)

	_, err = Integer(4.5)
	assert.Equal(t, CodeInteger, codeOf(t, err))
}

func TestBool(t *testing.T) {
	b, err := Bool(false)
	require.NoError(t, err)
	assert.False(t, b)

	_, err = Bool(0)
	assert.Equal(t, CodeBool, codeOf(t, err))
}

func TestArray(t *testing.T) {
	items, err := Array([]any{1, "a"})
	require.NoError(t, err)
	assert.Equal(t, []any{1, "a"}, items)

	items, err = Array([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, items)

	items, err = Array([2]string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "y"}, items)

	for _, bad := range []any{nil, "abc", map[string]any{}, []int(nil)} {
		_, err := Array(bad)
		assert.Equal(t, CodeArray, codeOf(t, err), "Array(%#v)", bad)
	}
	assert.True(t, IsArray([]string{}))
	assert.False(t, IsArray(1))
}

func TestObject(t *testing.T) {
	m, err := Object(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, m)

	m, err = Object(map[string]int{"b": 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": 2}, m)

	for _, bad := range []any{nil, []any{}, "x", map[int]any{1: 1}, map[string]any(nil)} {
		_, err := Object(bad)
		assert.Equal(t, CodeObject, codeOf(t, err), "Object(%#v)", bad)
	}
}

func TestShapeFuncs(t *testing.T) {
	assert.NoError(t, MinItems(2)([]any{1, 2}))
	err := MinItems(2)([]any{1})
	assert.Equal(t, CodeMinItems, codeOf(t, err))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, map[string]any{"min": 2, "actual": 1}, ve.Context)

	assert.NoError(t, MaxItems(1)([]any{1}))
	assert.Equal(t, CodeMaxItems, codeOf(t, MaxItems(1)([]any{1, 2})))
}

func TestLengthRangeOneOf(t *testing.T) {
	_, err := Length("ab", 3, -1)
	assert.Equal(t, CodeMinLength, codeOf(t, err))
	_, err = Length("abcd", 0, 3)
	assert.Equal(t, CodeMaxLength, codeOf(t, err))
	s, err := Length("äöü", 3, 3)
	require.NoError(t, err)
	assert.Equal(t, "äöü", s)

	_, err = Range(5, decimal.NewFromInt(6), decimal.NewFromInt(10))
	assert.Equal(t, CodeMin, codeOf(t, err))
	_, err = Range(11, decimal.NewFromInt(6), decimal.NewFromInt(10))
	assert.Equal(t, CodeMax, codeOf(t, err))
	d, err := Range(7, decimal.NewFromInt(6), decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(7)))

	_, err = OneOf("red", "green", "blue")
	assert.Equal(t, CodeOneOf, codeOf(t, err))
	s, err = OneOf("blue", "green", "blue")
	require.NoError(t, err)
	assert.Equal(t, "blue", s)
}
