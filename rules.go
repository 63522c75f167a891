package paramcheck

import (
	"fmt"

	"github.com/gofhir/paramcheck/async"
	"github.com/gofhir/paramcheck/check"
)

// Rule is a deferred cross-field check. Rules run after every top-level
// parameter resolved, once per occurrence of their parameter, in the
// order they were registered.
//
// values holds the sanitized top-level values of the run. A rule reports
// failures by adding issues to errs; an error in the returned future
// aborts the run.
type Rule func(errs *ErrorStore, values map[string]any, rc *ResolveContext) *async.Future[struct{}]

// RequiredIfFunc decides whether an absent parameter was required. node
// is the parameter's own (absent) node, usable to navigate to siblings.
type RequiredIfFunc func(values map[string]any, node *ExecutionNode, ric *RequiredIfContext) bool

// RequiredIfContext collects why a conditional requirement applies. Its
// content becomes the context of the required.if issue.
type RequiredIfContext struct {
	reasons   []string
	dependsOn []*ExecutionNode
}

// Reason adds a human-readable reason.
func (c *RequiredIfContext) Reason(reason string) *RequiredIfContext {
	c.reasons = append(c.reasons, reason)
	return c
}

// DependsOn records a node the requirement depends on.
func (c *RequiredIfContext) DependsOn(n *ExecutionNode) *RequiredIfContext {
	if n != nil {
		c.dependsOn = append(c.dependsOn, n)
	}
	return c
}

// Reasons returns the recorded reasons.
func (c *RequiredIfContext) Reasons() []string { return c.reasons }

// Dependencies returns the recorded nodes.
func (c *RequiredIfContext) Dependencies() NodeList { return newNodeList(c.dependsOn) }

// ErrorContext returns the issue context: the dependency paths under
// "dependsOn" and the reasons under "reasons".
func (c *RequiredIfContext) ErrorContext() map[string]any {
	paths := make([]string, len(c.dependsOn))
	for i, n := range c.dependsOn {
		paths[i] = n.Path()
	}
	reasons := make([]string, len(c.reasons))
	copy(reasons, c.reasons)
	return map[string]any{
		"dependsOn": paths,
		"reasons":   reasons,
	}
}

// RequiredIf registers a rule that reports required.if when the parameter
// is absent and predicate returns true.
func (p *Parameter) RequiredIf(predicate RequiredIfFunc) *Parameter {
	if p.rejectFrozen("RequiredIf") || predicate == nil {
		return p
	}
	p.hasRequiredIf = true
	p.rules = append(p.rules, requiredIfRule(p, func(values map[string]any, node *ExecutionNode, ric *RequiredIfContext, _ *ResolveContext) (bool, error) {
		return predicate(values, node, ric), nil
	}))
	return p
}

// RequiredIfExpr is RequiredIf with a FHIRPath condition evaluated
// against the sanitized top-level values, e.g. "notify = true".
// A condition that does not compile aborts the run with a *SchemaError.
func (p *Parameter) RequiredIfExpr(condition string) *Parameter {
	if p.rejectFrozen("RequiredIfExpr") {
		return p
	}
	p.hasRequiredIf = true
	p.rules = append(p.rules, requiredIfRule(p, func(values map[string]any, _ *ExecutionNode, ric *RequiredIfContext, rc *ResolveContext) (bool, error) {
		ok, err := rc.global.evaluator.Eval(condition, values)
		if err != nil {
			return false, errInvalidCondition(p, err)
		}
		if ok {
			ric.Reason(fmt.Sprintf("condition %q holds", condition))
		}
		return ok, nil
	}))
	return p
}

type requiredIfPredicate func(values map[string]any, node *ExecutionNode, ric *RequiredIfContext, rc *ResolveContext) (bool, error)

func requiredIfRule(p *Parameter, predicate requiredIfPredicate) Rule {
	return func(errs *ErrorStore, values map[string]any, rc *ResolveContext) *async.Future[struct{}] {
		if rc.Exists() {
			return async.Done()
		}
		node, err := rc.Node()
		if err != nil {
			return async.Fail[struct{}](err)
		}

		ric := &RequiredIfContext{}
		required, err := predicate(values, node, ric, rc)
		if err != nil {
			return async.Fail[struct{}](err)
		}
		if required {
			errs.Add(newIssue(rc, p, check.NewError(check.CodeRequiredIf, ric.ErrorContext())))
		}
		return async.Done()
	}
}

// runRule calls rule, turning a panic or a nil future into a failed
// future.
func runRule(rule Rule, errs *ErrorStore, values map[string]any, rc *ResolveContext) (f *async.Future[struct{}]) {
	defer func() {
		if r := recover(); r != nil {
			f = async.Fail[struct{}](async.Recovered(r))
		}
	}()
	f = rule(errs, values, rc)
	if f == nil {
		f = async.Done()
	}
	return f
}
