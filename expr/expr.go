// Package expr evaluates FHIRPath conditions against resolved values.
//
// Conditions are compiled once and kept in an LRU cache. The data a
// condition runs against is the JSON encoding of the value passed to
// Eval, so for a map of sanitized values
//
//	notify = true and email.empty()
//
// reads the "notify" and "email" entries.
package expr

import (
	"encoding/json"
	"fmt"

	"github.com/gofhir/fhirpath"
	"github.com/gofhir/fhirpath/types"

	"github.com/gofhir/paramcheck/cache"
	"github.com/gofhir/paramcheck/pool"
)

// DefaultCacheSize is the number of compiled conditions an Evaluator
// keeps when no size is given.
const DefaultCacheSize = 256

// CompileError reports a condition that does not compile.
type CompileError struct {
	Expression string
	Err        error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile condition %q: %v", e.Expression, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Evaluator compiles and evaluates conditions. It is safe for
// concurrent use.
type Evaluator struct {
	compiled *cache.Cache[string, *fhirpath.Expression]
}

// NewEvaluator creates an Evaluator caching up to size compiled conditions.
func NewEvaluator(size int) *Evaluator {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Evaluator{
		compiled: cache.New[string, *fhirpath.Expression](size),
	}
}

var defaultEvaluator = NewEvaluator(DefaultCacheSize)

// Default returns the shared Evaluator.
func Default() *Evaluator {
	return defaultEvaluator
}

// Compile compiles expression, or returns the cached compilation.
func (e *Evaluator) Compile(expression string) (*fhirpath.Expression, error) {
	return e.compiled.GetOrLoad(expression, func() (*fhirpath.Expression, error) {
		c, err := fhirpath.Compile(expression)
		if err != nil {
			return nil, &CompileError{Expression: expression, Err: err}
		}
		return c, nil
	})
}

// Eval evaluates expression against data and converts the result to a
// boolean using FHIRPath truthiness: an empty collection is false, a
// single boolean is its value, anything else is true.
func (e *Evaluator) Eval(expression string, data any) (bool, error) {
	compiled, err := e.Compile(expression)
	if err != nil {
		return false, err
	}

	doc, err := encode(data)
	if err != nil {
		return false, fmt.Errorf("encode condition input: %w", err)
	}

	result, err := compiled.Evaluate(doc)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", expression, err)
	}
	return truthy(result), nil
}

// Stats returns the compiled-condition cache statistics.
func (e *Evaluator) Stats() cache.Stats {
	return e.compiled.Stats()
}

func encode(data any) ([]byte, error) {
	switch v := data.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	}

	buf := pool.AcquireBuffer()
	defer pool.ReleaseBuffer(buf)

	if err := json.NewEncoder(buf).Encode(data); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func truthy(result types.Collection) bool {
	if len(result) == 0 {
		return false
	}
	if len(result) == 1 {
		if b, ok := result[0].(types.Boolean); ok {
			return b.Bool()
		}
	}
	return true
}
