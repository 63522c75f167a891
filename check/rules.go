package check

import (
	"slices"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ShapeFunc validates a whole array before its elements are resolved.
type ShapeFunc func(items []any) error

// MinItems fails when fewer than n items are present.
func MinItems(n int) ShapeFunc {
	return func(items []any) error {
		if len(items) < n {
			return NewError(CodeMinItems, map[string]any{"min": n, "actual": len(items)})
		}
		return nil
	}
}

// MaxItems fails when more than n items are present.
func MaxItems(n int) ShapeFunc {
	return func(items []any) error {
		if len(items) > n {
			return NewError(CodeMaxItems, map[string]any{"max": n, "actual": len(items)})
		}
		return nil
	}
}

// Length asserts that v is a string whose rune count lies in [min, max].
// A negative max means unbounded.
func Length(v any, min, max int) (string, error) {
	s, err := String(v)
	if err != nil {
		return "", err
	}
	n := utf8.RuneCountInString(s)
	if n < min {
		return "", NewError(CodeMinLength, map[string]any{"min": min, "actual": n})
	}
	if max >= 0 && n > max {
		return "", NewError(CodeMaxLength, map[string]any{"max": max, "actual": n})
	}
	return s, nil
}

// Range asserts that v is numeric and lies in [min, max].
func Range(v any, min, max decimal.Decimal) (decimal.Decimal, error) {
	d, err := Decimal(v)
	if err != nil {
		return decimal.Zero, err
	}
	if d.LessThan(min) {
		return decimal.Zero, NewError(CodeMin, map[string]any{"min": min.String(), "actual": d.String()})
	}
	if d.GreaterThan(max) {
		return decimal.Zero, NewError(CodeMax, map[string]any{"max": max.String(), "actual": d.String()})
	}
	return d, nil
}

// OneOf asserts that v is a string contained in allowed.
func OneOf(v any, allowed ...string) (string, error) {
	s, err := String(v)
	if err != nil {
		return "", err
	}
	if !slices.Contains(allowed, s) {
		return "", NewError(CodeOneOf, map[string]any{"allowed": allowed})
	}
	return s, nil
}
