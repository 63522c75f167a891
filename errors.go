package paramcheck

import (
	"errors"
	"fmt"
)

// SchemaError reports a malformed schema or a misuse of the engine. It is
// never collected as a validation issue: it propagates to the caller of
// Validate, which should treat it as a programming mistake.
//
// Use errors.Is with one of the Err* kinds below to find out which guard
// fired.
type SchemaError struct {
	Kind error
	Msg  string
}

func (e *SchemaError) Error() string {
	return "[schema-error] " + e.Msg
}

func (e *SchemaError) Unwrap() error {
	return e.Kind
}

// Configuration error kinds.
var (
	ErrSyncAfterAsync          = errors.New("sync validation after async validation")
	ErrAsyncAfterSync          = errors.New("async validation after sync validation")
	ErrValidationAfterDisabled = errors.New("validation after noValidation")
	ErrDisabledAfterValidation = errors.New("noValidation after validation")
	ErrObjectWithValidation    = errors.New("validation on object parameter")
	ErrValidationWithObject    = errors.New("object on validated parameter")
	ErrMissingValidation       = errors.New("missing validation")
	ErrRequiredWithDefault     = errors.New("required parameter with default value")
	ErrRequiredWithRequiredIf  = errors.New("required parameter with requiredIf rule")
	ErrAsyncReturnedSettled    = errors.New("async validation returned a settled value")
	ErrSyncReturnedPending     = errors.New("sync validation returned a pending value")
	ErrModeMismatch            = errors.New("validation mode mismatch")
	ErrUnexpectedPending       = errors.New("unexpected pending value")
	ErrMissingParameter        = errors.New("missing parameter")
	ErrMissingProperty         = errors.New("missing property")
	ErrNotFrozen               = errors.New("parameter not frozen")
	ErrFrozen                  = errors.New("parameter already frozen")
	ErrMissingNode             = errors.New("execution node not available")
	ErrInvalidCollectState     = errors.New("invalid collect state")
	ErrInvalidCondition        = errors.New("invalid condition")
)

func schemaErrorf(kind error, format string, args ...any) *SchemaError {
	return &SchemaError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsSchemaError reports whether err is, or wraps, a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

func errGuardSyncAfterAsync(p *Parameter) error {
	return schemaErrorf(ErrSyncAfterAsync, "Parameter %q: cannot set sync validation when async is already set", p.name)
}

func errGuardAsyncAfterSync(p *Parameter) error {
	return schemaErrorf(ErrAsyncAfterSync, "Parameter %q: cannot set async validation when sync is already set", p.name)
}

func errGuardSyncAfterDisabled(p *Parameter) error {
	return schemaErrorf(ErrValidationAfterDisabled, "Parameter %q: cannot set validation after NoValidation() was called", p.name)
}

func errGuardAsyncAfterDisabled(p *Parameter) error {
	return schemaErrorf(ErrValidationAfterDisabled, "Parameter %q: cannot set async validation after NoValidation() was called", p.name)
}

func errGuardDisabledAfterValidation(p *Parameter) error {
	return schemaErrorf(ErrDisabledAfterValidation, "Parameter %q: cannot call NoValidation() because a validation (sync or async) is already defined", p.name)
}

func errObjectWithValidation(p *Parameter) error {
	return schemaErrorf(ErrObjectWithValidation, "Parameter %q: cannot set validation on object parameters, object properties are validated independently", p.name)
}

func errValidationWithObject(p *Parameter) error {
	return schemaErrorf(ErrValidationWithObject, "Parameter %q: cannot set Object() on parameters with a validation, validate the object properties instead", p.name)
}

func errMissingValidation(p *Parameter) error {
	return schemaErrorf(ErrMissingValidation, "Parameter %q is missing a validation, scalar parameters must declare Validation, AsyncValidation or NoValidation", p.name)
}

func errRequiredWithDefault(name string) error {
	return schemaErrorf(ErrRequiredWithDefault, "Parameter %q cannot be required and have a default value", name)
}

func errRequiredWithRequiredIf(p *Parameter) error {
	return schemaErrorf(ErrRequiredWithRequiredIf, "invalid schema: parameter %q is statically required and has requiredIf rules", p.name)
}

func errAsyncReturnedSettled(p *Parameter) error {
	return schemaErrorf(ErrAsyncReturnedSettled, "%q: AsyncValidation() must return a deferred future, keep it consistent", p.name)
}

func errSyncReturnedPending(p *Parameter) error {
	return schemaErrorf(ErrSyncReturnedPending, "%q: sync validation returned a future, use AsyncValidation() instead", p.name)
}

func errModeMismatch(p *Parameter) error {
	return schemaErrorf(ErrModeMismatch, "Parameter %q is sync, but validation returned a pending result", p.name)
}

func errUnexpectedPending(source string) error {
	location := ""
	if source != "" {
		location = " in " + source
	}
	return schemaErrorf(ErrUnexpectedPending, "unexpected pending result: synchronous schema cannot handle async validation%s", location)
}

func errMissingParameter(path string) error {
	return schemaErrorf(ErrMissingParameter, "parameter missing at path %q", path)
}

func errMissingProperty(p *Parameter, index int) error {
	return schemaErrorf(ErrMissingProperty, "Parameter %q: property %d is nil, check the Object() arguments or the ObjectFunc supplier", p.name, index)
}

func errNotFrozen(p *Parameter) error {
	return schemaErrorf(ErrNotFrozen, "Parameter %q is not frozen", p.name)
}

func errFrozen(p *Parameter, method string) error {
	return schemaErrorf(ErrFrozen, "Parameter %q: cannot call %s() after the parameter was frozen", p.name, method)
}

func errMissingNode(path string) error {
	return schemaErrorf(ErrMissingNode, "execution node not available for context at path %q, nodes are only available after resolution", path)
}

func errInvalidCollectState() error {
	return schemaErrorf(ErrInvalidCollectState, "invalid collect state, this indicates an internal schema error")
}

func errInvalidCondition(p *Parameter, err error) error {
	return &SchemaError{Kind: ErrInvalidCondition, Msg: fmt.Sprintf("Parameter %q: %v", p.name, err)}
}
