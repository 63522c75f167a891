package paramcheck

import (
	"context"

	"github.com/gofhir/paramcheck/async"
	"github.com/gofhir/paramcheck/check"
)

// Cardinality tells whether a parameter expects one value or an array.
type Cardinality int

const (
	One Cardinality = iota
	Many
)

func (c Cardinality) String() string {
	if c == Many {
		return "many"
	}
	return "one"
}

// ValidationMode is the declared validation strategy of a parameter.
// It is fixed before resolution so callers know whether validating a
// parameter can suspend.
type ValidationMode int

const (
	ModeNone ValidationMode = iota
	ModeDisabled
	ModeSync
	ModeAsync
)

func (m ValidationMode) String() string {
	switch m {
	case ModeDisabled:
		return "disabled"
	case ModeSync:
		return "sync"
	case ModeAsync:
		return "async"
	default:
		return "none"
	}
}

// ValidationFunc validates and sanitizes a raw value synchronously.
type ValidationFunc func(value any) (any, error)

// AsyncValidationFunc validates a raw value asynchronously. It must return
// a deferred future, typically from async.Go or async.Resolve.
type AsyncValidationFunc func(ctx context.Context, value any) *async.Future[any]

// ShapeFunc validates a whole array before its items are resolved.
type ShapeFunc = check.ShapeFunc

// Parameter is a schema node: one named, possibly nested, possibly
// repeated input field and how to validate it.
//
// Parameters are configured through chained calls and frozen the first
// time they are resolved. Configuration mistakes made while chaining are
// kept and reported by Freeze.
//
// After a run, top-level parameters expose the run's outcome through
// Value, Raw and Exists.
type Parameter struct {
	name         string
	required     bool
	defaultValue any
	cardinality  Cardinality

	isObject   bool
	propsDef   []*Parameter
	propsFunc  func() []*Parameter
	properties []*Parameter

	mode          ValidationMode
	validate      ValidationFunc
	validateAsync AsyncValidationFunc
	shape         ShapeFunc

	rules         []Rule
	hasRequiredIf bool

	err       error
	frozen    bool
	freezeErr error

	value  any
	raw    any
	exists bool
	path   string
}

// NewParameter creates a parameter. A nil defaultValue means no default.
// Required parameters cannot have a default.
func NewParameter(name string, required bool, defaultValue any) *Parameter {
	p := &Parameter{
		name:     name,
		required: required,
	}
	if required && defaultValue != nil {
		p.fail(errRequiredWithDefault(name))
		return p
	}
	p.defaultValue = defaultValue
	return p
}

// Required creates a required parameter.
func Required(name string) *Parameter {
	return NewParameter(name, true, nil)
}

// Optional creates an optional parameter with an optional default.
func Optional(name string, defaultValue any) *Parameter {
	return NewParameter(name, false, defaultValue)
}

// fail keeps the first configuration error.
func (p *Parameter) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// rejectFrozen records ErrFrozen and reports true if p is already frozen.
func (p *Parameter) rejectFrozen(method string) bool {
	if !p.frozen {
		return false
	}
	p.fail(errFrozen(p, method))
	return true
}

// Object declares the parameter as an object with the given properties,
// resolved in the order given.
func (p *Parameter) Object(properties ...*Parameter) *Parameter {
	if p.rejectFrozen("Object") {
		return p
	}
	if p.mode == ModeSync || p.mode == ModeAsync {
		p.fail(errValidationWithObject(p))
		return p
	}
	p.isObject = true
	p.propsDef = properties
	p.propsFunc = nil
	return p
}

// ObjectFunc is like Object, but the properties are supplied lazily when
// the parameter is frozen. Use it for self-referencing schemas.
func (p *Parameter) ObjectFunc(supplier func() []*Parameter) *Parameter {
	if p.rejectFrozen("ObjectFunc") {
		return p
	}
	if p.mode == ModeSync || p.mode == ModeAsync {
		p.fail(errValidationWithObject(p))
		return p
	}
	p.isObject = true
	p.propsDef = nil
	p.propsFunc = supplier
	return p
}

// Many declares the parameter as an array. An optional shape function
// validates the whole array.
func (p *Parameter) Many(shape ...ShapeFunc) *Parameter {
	if p.rejectFrozen("Many") {
		return p
	}
	p.cardinality = Many
	for _, fn := range shape {
		if fn != nil {
			p.shape = fn
		}
	}
	return p
}

// One declares the parameter as a single value and drops any shape
// function.
func (p *Parameter) One() *Parameter {
	if p.rejectFrozen("One") {
		return p
	}
	p.cardinality = One
	p.shape = nil
	return p
}

// Validation sets a synchronous validation handler.
func (p *Parameter) Validation(fn ValidationFunc) *Parameter {
	if p.rejectFrozen("Validation") {
		return p
	}
	switch {
	case p.isObject:
		p.fail(errObjectWithValidation(p))
	case p.mode == ModeDisabled:
		p.fail(errGuardSyncAfterDisabled(p))
	case p.mode == ModeAsync:
		p.fail(errGuardSyncAfterAsync(p))
	default:
		p.mode = ModeSync
		p.validate = fn
	}
	return p
}

// AsyncValidation sets an asynchronous validation handler.
func (p *Parameter) AsyncValidation(fn AsyncValidationFunc) *Parameter {
	if p.rejectFrozen("AsyncValidation") {
		return p
	}
	switch {
	case p.isObject:
		p.fail(errObjectWithValidation(p))
	case p.mode == ModeDisabled:
		p.fail(errGuardAsyncAfterDisabled(p))
	case p.mode == ModeSync:
		p.fail(errGuardAsyncAfterSync(p))
	default:
		p.mode = ModeAsync
		p.validateAsync = fn
	}
	return p
}

// NoValidation accepts raw values unchanged.
func (p *Parameter) NoValidation() *Parameter {
	if p.rejectFrozen("NoValidation") {
		return p
	}
	if p.mode == ModeSync || p.mode == ModeAsync {
		p.fail(errGuardDisabledAfterValidation(p))
		return p
	}
	p.mode = ModeDisabled
	return p
}

// AddRule attaches a deferred rule. It runs once per resolved occurrence
// of the parameter, after the whole schema resolved.
func (p *Parameter) AddRule(rule Rule) *Parameter {
	if p.rejectFrozen("AddRule") {
		return p
	}
	if rule != nil {
		p.rules = append(p.rules, rule)
	}
	return p
}

// Freeze checks the configuration and binds the properties. It runs once;
// later calls return the first result, or ErrFrozen if a builder method
// was called on the frozen parameter.
func (p *Parameter) Freeze() error {
	if p.frozen {
		if p.freezeErr != nil {
			return p.freezeErr
		}
		return p.err
	}
	p.frozen = true
	p.freezeErr = p.freeze()
	return p.freezeErr
}

func (p *Parameter) freeze() error {
	if p.err != nil {
		return p.err
	}

	if p.mode == ModeNone && !p.isObject {
		return errMissingValidation(p)
	}

	if p.required && p.hasRequiredIf {
		return errRequiredWithRequiredIf(p)
	}

	if p.cardinality == Many && p.defaultValue != nil && !check.IsArray(p.defaultValue) {
		p.defaultValue = []any{p.defaultValue}
	}

	if !p.isObject {
		return nil
	}

	props := p.propsDef
	if p.propsFunc != nil {
		props = p.propsFunc()
	}
	p.propsDef = nil
	p.propsFunc = nil

	for i, prop := range props {
		if prop == nil {
			return errMissingProperty(p, i)
		}
	}
	p.properties = props

	for _, prop := range props {
		if err := prop.Freeze(); err != nil {
			return err
		}
	}
	return nil
}

// Validate runs the validation handler against value.
//
// Disabled and absent handlers return value unchanged. A sync handler
// yields an immediate future, an async handler a deferred one; a handler
// that breaks its declared mode yields a *SchemaError. A panicking handler
// fails like a handler returning an error.
func (p *Parameter) Validate(ctx context.Context, value any) *async.Future[any] {
	switch p.mode {
	case ModeSync:
		if p.validate == nil {
			return async.Value(value)
		}
		v, err := callValidation(p.validate, value)
		if err != nil {
			return async.Fail[any](err)
		}
		if _, pending := v.(async.Awaitable); pending {
			return async.Fail[any](errSyncReturnedPending(p))
		}
		return async.Value(v)

	case ModeAsync:
		if p.validateAsync == nil {
			return async.Resolve(value)
		}
		f, err := callAsyncValidation(ctx, p.validateAsync, value)
		if err != nil {
			return async.Reject[any](err)
		}
		if f == nil || !f.Deferred() {
			return async.Fail[any](errAsyncReturnedSettled(p))
		}
		return f

	default:
		return async.Value(value)
	}
}

func callValidation(fn ValidationFunc, value any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, async.Recovered(r)
		}
	}()
	return fn(value)
}

func callAsyncValidation(ctx context.Context, fn AsyncValidationFunc, value any) (f *async.Future[any], err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, async.Recovered(r)
		}
	}()
	return fn(ctx, value), nil
}

// ValidateShape runs the shape function, if any, against items.
func (p *Parameter) ValidateShape(items []any) (err error) {
	if p.shape == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = async.Recovered(r)
		}
	}()
	return p.shape(items)
}

// Name returns the parameter name, which is also its lookup key.
func (p *Parameter) Name() string { return p.name }

// IsRequired reports whether the parameter must be present.
func (p *Parameter) IsRequired() bool { return p.required }

// DefaultValue returns the default used when the parameter is absent.
func (p *Parameter) DefaultValue() any { return p.defaultValue }

// Cardinality returns One or Many.
func (p *Parameter) Cardinality() Cardinality { return p.cardinality }

// IsMany reports whether the parameter expects an array.
func (p *Parameter) IsMany() bool { return p.cardinality == Many }

// IsObject reports whether the parameter has properties.
func (p *Parameter) IsObject() bool { return p.isObject }

// Mode returns the declared validation mode.
func (p *Parameter) Mode() ValidationMode { return p.mode }

// IsNoValidation reports whether validation is disabled.
func (p *Parameter) IsNoValidation() bool { return p.mode == ModeDisabled }

// HasValidation reports whether a sync or async handler is set.
func (p *Parameter) HasValidation() bool {
	return p.mode == ModeSync || p.mode == ModeAsync
}

// IsAsync reports whether validating the parameter can suspend: it has
// an async handler, or one of its properties does.
func (p *Parameter) IsAsync() bool {
	return p.isAsync(make(map[*Parameter]bool))
}

func (p *Parameter) isAsync(seen map[*Parameter]bool) bool {
	if p.mode == ModeAsync {
		return true
	}
	if seen[p] {
		return false
	}
	seen[p] = true

	props := p.properties
	if !p.frozen {
		props = p.propsDef
	}
	for _, prop := range props {
		if prop != nil && prop.isAsync(seen) {
			return true
		}
	}
	return false
}

// Properties returns the bound properties. It fails before Freeze.
func (p *Parameter) Properties() ([]*Parameter, error) {
	if !p.frozen {
		return nil, errNotFrozen(p)
	}
	out := make([]*Parameter, len(p.properties))
	copy(out, p.properties)
	return out, nil
}

// Rules returns the attached deferred rules.
func (p *Parameter) Rules() []Rule { return p.rules }

// Err returns the first configuration error recorded while chaining.
func (p *Parameter) Err() error { return p.err }

// Value returns the sanitized value of the last run.
func (p *Parameter) Value() any { return p.value }

// Raw returns the raw input of the last run. For objects and arrays it is
// a container with the same shape as the input.
func (p *Parameter) Raw() any { return p.raw }

// Meta is an alias of Raw.
func (p *Parameter) Meta() any { return p.raw }

// Exists reports whether the parameter was present in the last lookup.
func (p *Parameter) Exists() bool { return p.exists }

// Path returns the path of the last resolved occurrence, or the name.
func (p *Parameter) Path() string {
	if p.path == "" {
		return p.name
	}
	return p.path
}

// AssertSync returns a *SchemaError if p can suspend.
func AssertSync(p *Parameter) error {
	if p.IsAsync() {
		return schemaErrorf(ErrModeMismatch, "assertion failed: parameter %q is not sync", p.name)
	}
	return nil
}

// AssertAsync returns a *SchemaError if p cannot suspend.
func AssertAsync(p *Parameter) error {
	if !p.IsAsync() {
		return schemaErrorf(ErrModeMismatch, "assertion failed: parameter %q is not async", p.name)
	}
	return nil
}
