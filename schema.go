package paramcheck

import (
	"context"
	"strconv"
	"time"

	"github.com/gofhir/paramcheck/async"
	"github.com/gofhir/paramcheck/cache"
	"github.com/gofhir/paramcheck/expr"
	"github.com/gofhir/paramcheck/pkg/logger"
	"github.com/gofhir/paramcheck/store"
)

// Schema is an ordered list of top-level parameters validated together.
//
// Parameters keep the outcome of the last run (Value, Raw, Exists), so a
// Schema must not run concurrently with itself. Separate schemas can run
// in parallel.
type Schema struct {
	params    []*Parameter
	log       *logger.Logger
	metrics   *Metrics
	evaluator *expr.Evaluator
}

// NewSchema creates an empty schema.
func NewSchema(opts ...Option) *Schema {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := &Schema{
		log:       o.Logger,
		metrics:   o.Metrics,
		evaluator: o.Evaluator,
	}
	if s.evaluator == nil {
		s.evaluator = expr.NewEvaluator(o.ExpressionCacheSize)
	}
	return s
}

// Add appends parameters. They are resolved in the order added.
func (s *Schema) Add(params ...*Parameter) *Schema {
	s.params = append(s.params, params...)
	return s
}

// Parameters returns the top-level parameters.
func (s *Schema) Parameters() []*Parameter {
	out := make([]*Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// Metrics returns the metrics the schema records into, or nil.
func (s *Schema) Metrics() *Metrics { return s.metrics }

// ExpressionStats returns the statistics of the compiled-condition cache
// used by RequiredIfExpr.
func (s *Schema) ExpressionStats() cache.Stats { return s.evaluator.Stats() }

// IsAsync reports whether a run can suspend.
func (s *Schema) IsAsync() bool {
	for _, p := range s.params {
		if p != nil && p.IsAsync() {
			return true
		}
	}
	return false
}

// Validate runs the schema against in. A schema without async parameters
// returns an immediate future that never touches a goroutine; otherwise
// the future is deferred.
//
// Validation failures are in the Result; the future only fails on a
// *SchemaError or a failed rule.
func (s *Schema) Validate(ctx context.Context, in store.Store) *async.Future[*Result] {
	if ctx == nil {
		ctx = context.Background()
	}

	r := &run{
		schema: s,
		in:     in,
		errs:   NewErrorStore(),
		global: NewGlobalContext(ctx),
		values: make(map[string]any, len(s.params)),
		start:  time.Now(),
	}
	r.global.evaluator = s.evaluator
	r.log = s.log.With("run", r.global.ID())

	for i, p := range s.params {
		if p == nil {
			return r.finish(nil, errMissingParameter(indexName(i)))
		}
		if err := p.Freeze(); err != nil {
			return r.finish(nil, err)
		}
	}

	isAsync := s.IsAsync()
	if r.log.Enabled(logger.LevelDebug) {
		r.log.Debug("validating %d parameters, async=%t", len(s.params), isAsync)
	}

	f := async.Then(r.walkParameters(0), func(_ struct{}, err error) *async.Future[*Result] {
		if err != nil {
			return r.finish(nil, err)
		}
		return async.Then(r.walkRules(0), func(_ struct{}, err error) *async.Future[*Result] {
			if err != nil {
				return r.finish(nil, err)
			}
			return r.finish(&Result{Errors: r.errs, Global: r.global, Values: r.values}, nil)
		})
	})

	if isAsync && !f.Deferred() {
		res, err := f.Result()
		if err != nil {
			return async.Reject[*Result](err)
		}
		return async.Resolve(res)
	}
	return f
}

// Run validates in and waits for the result.
func (s *Schema) Run(ctx context.Context, in store.Store) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.Validate(ctx, in).Await(ctx)
}

// ValidateSync validates a schema that cannot suspend. Async schemas are
// rejected with ErrUnexpectedPending before anything runs.
func (s *Schema) ValidateSync(in store.Store) (*Result, error) {
	for _, p := range s.params {
		if p == nil {
			continue
		}
		if err := p.Freeze(); err != nil {
			return nil, err
		}
	}
	if s.IsAsync() {
		return nil, errUnexpectedPending("ValidateSync")
	}
	f := s.Validate(context.Background(), in)
	if err := AssertNoPending(f); err != nil {
		return nil, err
	}
	return f.Result()
}

// AssertNoPending returns a *SchemaError if f is deferred.
func AssertNoPending[T any](f *async.Future[T]) error {
	if f.Deferred() {
		return errUnexpectedPending("")
	}
	return nil
}

// assertValidationMatch fails when a parameter that cannot suspend
// produced a deferred result.
func assertValidationMatch(p *Parameter, f async.Awaitable) error {
	if f.Deferred() && !p.IsAsync() {
		return errModeMismatch(p)
	}
	return nil
}

// run is the state of one Validate call.
type run struct {
	schema *Schema
	in     store.Store
	errs   *ErrorStore
	global *GlobalContext
	values map[string]any
	start  time.Time
	log    *logger.Logger
}

// walkParameters resolves top-level parameters from index i on.
func (r *run) walkParameters(i int) *async.Future[struct{}] {
	for ; i < len(r.schema.params); i++ {
		p := r.schema.params[i]
		f := ValidateParameter(r.in, p, r.errs, r.global)
		if err := assertValidationMatch(p, f); err != nil {
			return async.Fail[struct{}](err)
		}
		if f.Deferred() {
			r.suspended()
			next := i + 1
			return async.Then(f, func(_ *ResolveContext, err error) *async.Future[struct{}] {
				if err != nil {
					return async.Fail[struct{}](err)
				}
				r.collect(p)
				return r.walkParameters(next)
			})
		}
		if _, err := f.Result(); err != nil {
			return async.Fail[struct{}](err)
		}
		r.collect(p)
	}
	return async.Done()
}

// collect adds the sanitized value of p to the values rules receive.
// Parameters without a value are left out.
func (r *run) collect(p *Parameter) {
	if v := p.Value(); v != nil {
		r.values[p.Name()] = v
	}
}

// walkRules drains the rule queue from index i on, in registration order.
func (r *run) walkRules(i int) *async.Future[struct{}] {
	for ; ; i++ {
		entry, ok := r.global.ruleAt(i)
		if !ok {
			return async.Done()
		}
		if r.schema.metrics != nil {
			r.schema.metrics.RecordRule()
		}
		f := runRule(entry.Rule, r.errs, r.values, entry.Context)
		if f.Deferred() {
			r.suspended()
			next := i + 1
			return async.Then(f, func(_ struct{}, err error) *async.Future[struct{}] {
				if err != nil {
					return async.Fail[struct{}](err)
				}
				return r.walkRules(next)
			})
		}
		if _, err := f.Result(); err != nil {
			return async.Fail[struct{}](err)
		}
	}
}

func (r *run) suspended() {
	if r.schema.metrics != nil {
		r.schema.metrics.RecordSuspension()
	}
	if r.log.Enabled(logger.LevelDebug) {
		r.log.Debug("suspended")
	}
}

// finish records the outcome of the run and passes it through.
func (r *run) finish(res *Result, err error) *async.Future[*Result] {
	elapsed := time.Since(r.start)
	log := r.log
	m := r.schema.metrics

	if err != nil {
		if m != nil && IsSchemaError(err) {
			m.RecordSchemaError()
		}
		log.Error("failed after %v: %v", elapsed, err)
		return async.Fail[*Result](err)
	}

	if m != nil {
		m.RecordRun(elapsed, res.Valid())
		m.RecordIssues(res.Errors.Len())
	}
	if log.Enabled(logger.LevelDebug) {
		log.Debug("%d issues in %v", res.Errors.Len(), elapsed)
	}
	return async.Value(res)
}

func indexName(i int) string {
	return "#" + strconv.Itoa(i)
}
