package paramcheck

import (
	"context"

	"github.com/gofhir/paramcheck/async"
	"github.com/gofhir/paramcheck/check"
	"github.com/gofhir/paramcheck/store"
)

// ValidateParameter resolves one top-level parameter against s.
//
// Validation failures are collected in errs and do not fail the returned
// future; only schema errors do. On success p's Value and Raw hold the
// result, on failure they are nil. A nil errs or global gets a fresh one.
func ValidateParameter(s store.Store, p *Parameter, errs *ErrorStore, global *GlobalContext) *async.Future[*ResolveContext] {
	if p == nil {
		return async.Fail[*ResolveContext](errMissingParameter(""))
	}
	if errs == nil {
		errs = NewErrorStore()
	}
	if global == nil {
		global = NewGlobalContext(context.Background())
	}

	rc := NewResolveContext(global, p.Name())
	p.value, p.raw = nil, nil

	return async.Then(resolveFromStore(s, p, errs, rc), func(res ResolveResult, err error) *async.Future[*ResolveContext] {
		if err != nil {
			if IsSchemaError(err) {
				return async.Fail[*ResolveContext](err)
			}
			errs.record(rc, p, err)
			return async.Value(rc)
		}
		p.value, p.raw = res.Sanitized, res.Raw
		return async.Value(rc)
	})
}

// resolveFromStore looks p up in s and resolves the value found there.
// Absent optional parameters resolve to their default.
func resolveFromStore(s store.Store, p *Parameter, errs *ErrorStore, rc *ResolveContext) *async.Future[ResolveResult] {
	if p == nil {
		return async.Fail[ResolveResult](errMissingParameter(rc.Path()))
	}
	if err := p.Freeze(); err != nil {
		return async.Fail[ResolveResult](err)
	}

	rc.global.pushRules(p.rules, rc)

	m := store.Lookup(s, p.Name())
	p.exists = m.Found
	rc.exists = m.Found

	many := p.IsMany() && !rc.forceOne
	if p.required && (!m.Found || (many && isEmptyArray(m.Value))) {
		err := errs.record(rc, p, check.NewError(check.CodeRequiredMissing, nil))
		return async.Fail[ResolveResult](err)
	}

	if !m.Found {
		if len(p.rules) > 0 {
			newNode(rc, CollectAbsent, p)
		}
		return async.Value(ResolveResult{Sanitized: p.defaultValue})
	}

	return resolveLeaf(m.Value, p, errs, rc)
}

func isEmptyArray(v any) bool {
	items, err := check.Array(v)
	return err == nil && len(items) == 0
}

// resolveLeaf resolves a value already taken out of its store.
func resolveLeaf(value any, p *Parameter, errs *ErrorStore, rc *ResolveContext) *async.Future[ResolveResult] {
	if err := p.Freeze(); err != nil {
		return async.Fail[ResolveResult](err)
	}
	p.path = rc.Path()

	switch {
	case p.IsMany() && !rc.forceOne:
		return resolveMany(value, p, errs, rc)
	case p.IsObject():
		return resolveObject(value, p, errs, rc)
	default:
		return resolveValue(value, p, errs, rc)
	}
}

// resolveValue runs p's handler on a scalar value.
func resolveValue(value any, p *Parameter, errs *ErrorStore, rc *ResolveContext) *async.Future[ResolveResult] {
	node := newNode(rc, CollectLeaf, p)

	return async.Then(p.Validate(rc.global.ctx, value), func(sanitized any, err error) *async.Future[ResolveResult] {
		if err != nil {
			node.resolve(ResolveResult{Raw: value, Sanitized: Invalid})
			return async.Fail[ResolveResult](errs.record(rc, p, err))
		}
		res := ResolveResult{Raw: value, Sanitized: sanitized}
		node.resolve(res)
		rc.global.pushPostValidation(PostValidation{
			Parameter: p,
			Value:     sanitized,
			Path:      rc.Path(),
			Context:   rc,
		})
		return async.Value(res)
	})
}

// resolveObject resolves every property of p against the object value.
func resolveObject(value any, p *Parameter, errs *ErrorStore, rc *ResolveContext) *async.Future[ResolveResult] {
	node := newNode(rc, CollectObject, p)

	obj, err := check.Object(value)
	if err != nil {
		node.invalidate(value)
		return async.Fail[ResolveResult](errs.record(rc, p, err))
	}

	w := &objectWalk{
		props:     p.properties,
		errs:      errs,
		rc:        rc,
		in:        store.New(obj),
		raw:       make(map[string]any, len(p.properties)),
		sanitized: make(map[string]any, len(p.properties)),
	}
	return w.walk(0)
}

type objectWalk struct {
	props     []*Parameter
	errs      *ErrorStore
	rc        *ResolveContext
	in        store.Store
	raw       map[string]any
	sanitized map[string]any
}

// walk resolves properties from index i on. It stays on the caller's
// goroutine until a property suspends, then continues from there.
func (w *objectWalk) walk(i int) *async.Future[ResolveResult] {
	for ; i < len(w.props); i++ {
		prop := w.props[i]
		child := w.rc.Child(prop.Name())
		f := resolveFromStore(w.in, prop, w.errs, child)
		if f.Deferred() {
			next := i + 1
			return async.Then(f, func(res ResolveResult, err error) *async.Future[ResolveResult] {
				if err := w.fold(prop, child, res, err); err != nil {
					return async.Fail[ResolveResult](err)
				}
				return w.walk(next)
			})
		}
		res, err := f.Result()
		if err := w.fold(prop, child, res, err); err != nil {
			return async.Fail[ResolveResult](err)
		}
	}
	return async.Value(ResolveResult{Raw: w.raw, Sanitized: w.sanitized})
}

// fold stores a property result. Failed properties become Invalid; absent
// ones only appear in the sanitized map, and only with a default.
func (w *objectWalk) fold(prop *Parameter, child *ResolveContext, res ResolveResult, err error) error {
	name := prop.Name()
	if err != nil {
		if IsSchemaError(err) {
			return err
		}
		w.errs.record(child, prop, err)
		w.raw[name] = Invalid
		w.sanitized[name] = Invalid
		return nil
	}
	if child.exists {
		w.raw[name] = res.Raw
		w.sanitized[name] = res.Sanitized
	} else if res.Sanitized != nil {
		w.sanitized[name] = res.Sanitized
	}
	return nil
}

// resolveMany validates the array shape and then resolves every element
// as a single value of p.
func resolveMany(value any, p *Parameter, errs *ErrorStore, rc *ResolveContext) *async.Future[ResolveResult] {
	node := newNode(rc, CollectArray, p)

	items, err := check.Array(value)
	if err != nil {
		node.invalidate(value)
		return async.Fail[ResolveResult](errs.record(rc, p, err))
	}

	if err := p.ValidateShape(items); err != nil {
		if IsSchemaError(err) {
			return async.Fail[ResolveResult](err)
		}
		errs.record(rc, p, err)
	}

	w := &arrayWalk{
		p:         p,
		items:     items,
		errs:      errs,
		rc:        rc,
		raw:       make([]any, len(items)),
		sanitized: make([]any, len(items)),
	}
	return w.walk(0)
}

type arrayWalk struct {
	p         *Parameter
	items     []any
	errs      *ErrorStore
	rc        *ResolveContext
	raw       []any
	sanitized []any
}

func (w *arrayWalk) walk(i int) *async.Future[ResolveResult] {
	for ; i < len(w.items); i++ {
		idx := i
		item := w.rc.Item(idx)
		item.exists = true
		f := resolveLeaf(w.items[idx], w.p, w.errs, item)
		if f.Deferred() {
			return async.Then(f, func(res ResolveResult, err error) *async.Future[ResolveResult] {
				if err := w.fold(idx, item, res, err); err != nil {
					return async.Fail[ResolveResult](err)
				}
				return w.walk(idx + 1)
			})
		}
		res, err := f.Result()
		if err := w.fold(idx, item, res, err); err != nil {
			return async.Fail[ResolveResult](err)
		}
	}
	return async.Value(ResolveResult{Raw: w.raw, Sanitized: w.sanitized})
}

func (w *arrayWalk) fold(i int, item *ResolveContext, res ResolveResult, err error) error {
	if err != nil {
		if IsSchemaError(err) {
			return err
		}
		w.errs.record(item, w.p, err)
		w.raw[i] = Invalid
		w.sanitized[i] = Invalid
		return nil
	}
	w.raw[i] = res.Raw
	w.sanitized[i] = res.Sanitized
	return nil
}
