// Package paramcheck validates structured input against a declarative
// parameter schema.
//
// A schema is a list of named parameters. Each parameter is a scalar
// with a validation handler, an object of nested parameters, or an array
// of either. Validation walks the schema against the input, sanitizes
// every value it accepts, and collects every failure instead of stopping
// at the first one.
//
// # Quick Start
//
//	import (
//	    pc "github.com/gofhir/paramcheck"
//	    "github.com/gofhir/paramcheck/check"
//	    "github.com/gofhir/paramcheck/store"
//	)
//
//	name := pc.Required("name").Validation(func(v any) (any, error) {
//	    return check.NonEmptyString(v)
//	})
//	tags := pc.Optional("tags", nil).Many(check.MinItems(1)).NoValidation()
//
//	schema := pc.NewSchema().Add(name, tags)
//	result, err := schema.Run(ctx, store.New(input))
//	if err != nil {
//	    log.Fatal(err) // malformed schema
//	}
//	for _, issue := range result.Issues() {
//	    fmt.Println(issue)
//	}
//
// # Sync and Async
//
// Every parameter declares up front whether its handler is synchronous
// (Validation) or asynchronous (AsyncValidation). A schema without async
// parameters runs entirely on the caller's goroutine and returns a
// settled future; Validate then never blocks. Async handlers return
// deferred futures from the async package, and the run resumes after
// each one settles, strictly in declaration order.
//
// # Results
//
// Failed array elements and object properties are replaced by Invalid so
// containers keep their shape. After a run, top-level parameters expose
// Value (sanitized), Raw (input) and Exists.
//
// # Rules
//
// Cross-field rules (RequiredIf, RequiredIfExpr, AddRule) run after the
// whole input resolved. They see the sanitized top-level values and can
// navigate the execution tree from their own node to parents, children
// and siblings.
//
// # Functional Options
//
//	schema := pc.NewSchema(
//	    pc.WithLogger(logger.New(os.Stderr, logger.LevelDebug)),
//	    pc.WithMetrics(pc.NewMetrics()),
//	    pc.WithExpressionCache(512),
//	)
//
// Options can also be read from PARAMCHECK_* environment variables with
// OptionsFromEnv.
package paramcheck
