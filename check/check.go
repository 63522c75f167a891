// Package check provides the primitive type guards used by validation
// handlers, and the ValidationError they fail with.
//
// A ValidationError carries a stable dotted code ("type.string",
// "required.missing") and an optional context map. The engine reports the
// code as the issue reason, so handlers should prefer these guards over
// ad-hoc errors when a machine readable reason matters.
package check

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

// Codes reported by the guards in this package and by the engine.
const (
	CodeRequiredMissing = "required.missing"
	CodeRequiredIf      = "required.if"

	CodeString  = "type.string"
	CodeNumber  = "type.number"
	CodeInteger = "type.integer"
	CodeBool    = "type.bool"
	CodeArray   = "type.array"
	CodeObject  = "type.object"

	CodeMinItems  = "items.min"
	CodeMaxItems  = "items.max"
	CodeMinLength = "string.min"
	CodeMaxLength = "string.max"
	CodeNotEmpty  = "string.empty"
	CodeOneOf     = "value.oneof"
	CodeMin       = "number.min"
	CodeMax       = "number.max"
)

// ValidationError is a structured validation failure.
type ValidationError struct {
	Code    string
	Context map[string]any
}

// NewError creates a ValidationError with an optional context.
func NewError(code string, context map[string]any) *ValidationError {
	return &ValidationError{Code: code, Context: context}
}

func (e *ValidationError) Error() string {
	return e.Code
}

// String asserts that v is a string.
func String(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", NewError(CodeString, typeContext(v))
	}
	return s, nil
}

// NonEmptyString asserts that v is a string with non-whitespace content.
func NonEmptyString(v any) (string, error) {
	s, err := String(v)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", NewError(CodeNotEmpty, nil)
	}
	return s, nil
}

// Bool asserts that v is a bool.
func Bool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, NewError(CodeBool, typeContext(v))
	}
	return b, nil
}

// Decimal asserts that v is numeric and returns it as an exact decimal.
// Go numeric kinds, json.Number and decimal.Decimal are accepted; strings
// are not.
func Decimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, NewError(CodeNumber, typeContext(v))
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0), nil
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(rv.Float()), nil
	}
	return decimal.Zero, NewError(CodeNumber, typeContext(v))
}

// Number asserts that v is numeric and returns it as a float64.
func Number(v any) (float64, error) {
	d, err := Decimal(v)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

// Integer asserts that v is a whole number.
func Integer(v any) (int64, error) {
	d, err := Decimal(v)
	if err != nil {
		return 0, NewError(CodeInteger, typeContext(v))
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, NewError(CodeInteger, map[string]any{"value": d.String()})
	}
	return d.IntPart(), nil
}

// Array asserts that v is a slice or array and returns its elements.
// A nil value is not an array.
func Array(v any) ([]any, error) {
	if items, ok := v.([]any); ok {
		return items, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, NewError(CodeArray, typeContext(v))
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, NewError(CodeArray, typeContext(v))
	}

	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

// IsArray reports whether v would pass Array.
func IsArray(v any) bool {
	_, err := Array(v)
	return err == nil
}

// Object asserts that v is a string-keyed map. Arrays and nil are not
// objects.
func Object(v any) (map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		if m == nil {
			return nil, NewError(CodeObject, typeContext(v))
		}
		return m, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, NewError(CodeObject, typeContext(v))
	}

	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, nil
}

func typeContext(v any) map[string]any {
	if v == nil {
		return map[string]any{"type": "null"}
	}
	return map[string]any{"type": fmt.Sprintf("%T", v)}
}
