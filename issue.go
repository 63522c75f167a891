package paramcheck

import (
	"errors"
	"fmt"

	"github.com/gofhir/paramcheck/async"
	"github.com/gofhir/paramcheck/check"
)

// ValidationIssue is a single collected validation failure.
type ValidationIssue struct {
	// Path is the dotted path of the failing value ("user.0.age")
	Path string `json:"path"`

	// Name is the name of the parameter that failed
	Name string `json:"name"`

	// Reason is the ValidationError code, or the error message for
	// unstructured failures
	Reason string `json:"reason"`

	// Context carries the ValidationError context, if any
	Context map[string]any `json:"context,omitempty"`
}

// String returns a human-readable representation of the issue.
func (i ValidationIssue) String() string {
	if i.Path == "" {
		return i.Reason
	}
	return i.Path + ": " + i.Reason
}

// newIssue builds the issue for err observed at rc while resolving p.
func newIssue(rc *ResolveContext, p *Parameter, err error) ValidationIssue {
	issue := ValidationIssue{
		Path: rc.Path(),
		Name: p.Name(),
	}

	var ve *check.ValidationError
	var pe *async.PanicError
	switch {
	case errors.As(err, &ve):
		issue.Reason = ve.Code
		issue.Context = ve.Context
	case errors.As(err, &pe):
		issue.Reason = fmt.Sprint(pe.Value)
	case err != nil:
		issue.Reason = err.Error()
	}
	return issue
}
