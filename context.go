package paramcheck

import (
	"context"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/gofhir/paramcheck/expr"
	"github.com/gofhir/paramcheck/pool"
)

// PostValidation records a successfully validated leaf occurrence.
type PostValidation struct {
	Parameter *Parameter
	Value     any
	Path      string
	Context   *ResolveContext
}

// RuleEntry is a rule queued for one occurrence of its parameter.
type RuleEntry struct {
	Rule    Rule
	Context *ResolveContext
}

// GlobalContext is the state shared by every position of one run: the
// rule queue, the post-validation records, the node registry and the
// root scope.
//
// Async continuations of one run never overlap with each other, but they
// run on other goroutines than the caller, so the queues are guarded.
type GlobalContext struct {
	id        string
	ctx       context.Context
	evaluator *expr.Evaluator

	mu              sync.Mutex
	rules           []RuleEntry
	postValidations []PostValidation
	nodes           map[*Parameter][]*ExecutionNode
	scope           *ExecutionScope
}

// NewGlobalContext creates the shared state of a run.
func NewGlobalContext(ctx context.Context) *GlobalContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &GlobalContext{
		id:        uuid.NewString(),
		ctx:       ctx,
		evaluator: expr.Default(),
		nodes:     make(map[*Parameter][]*ExecutionNode),
		scope:     &ExecutionScope{},
	}
}

// ID returns the run identifier.
func (g *GlobalContext) ID() string { return g.id }

// Context returns the context handed to async handlers.
func (g *GlobalContext) Context() context.Context { return g.ctx }

// Evaluator returns the evaluator used by expression rules.
func (g *GlobalContext) Evaluator() *expr.Evaluator { return g.evaluator }

// Scope returns the root scope holding the top-level nodes.
func (g *GlobalContext) Scope() *ExecutionScope { return g.scope }

// Rules returns a snapshot of the queued rules.
func (g *GlobalContext) Rules() []RuleEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]RuleEntry, len(g.rules))
	copy(out, g.rules)
	return out
}

// PostValidations returns a snapshot of the post-validation records.
func (g *GlobalContext) PostValidations() []PostValidation {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]PostValidation, len(g.postValidations))
	copy(out, g.postValidations)
	return out
}

// Nodes returns every node created for p during the run, in creation
// order. The list is empty for unknown parameters.
func (g *GlobalContext) Nodes(p *Parameter) NodeList {
	g.mu.Lock()
	defer g.mu.Unlock()
	return newNodeList(g.nodes[p])
}

func (g *GlobalContext) ruleAt(i int) (RuleEntry, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i >= len(g.rules) {
		return RuleEntry{}, false
	}
	return g.rules[i], true
}

func (g *GlobalContext) pushRules(rules []Rule, rc *ResolveContext) {
	if len(rules) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range rules {
		g.rules = append(g.rules, RuleEntry{Rule: r, Context: rc})
	}
}

func (g *GlobalContext) pushPostValidation(pv PostValidation) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.postValidations = append(g.postValidations, pv)
}

func (g *GlobalContext) registerNode(p *Parameter, n *ExecutionNode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[p] = append(g.nodes[p], n)
}

// ResolveContext is the position of one occurrence in the tree being
// resolved. Contexts are created parent first; Child and Item derive new
// ones without changing the receiver.
type ResolveContext struct {
	segments []string
	path     string
	name     string
	forceOne bool
	global   *GlobalContext
	parent   *ExecutionNode

	node   *ExecutionNode
	exists bool
}

// NewResolveContext creates the context of a top-level parameter.
func NewResolveContext(global *GlobalContext, name string) *ResolveContext {
	return &ResolveContext{
		segments: []string{name},
		path:     name,
		name:     name,
		global:   global,
	}
}

func (rc *ResolveContext) derive(segment, name string, forceOne bool) *ResolveContext {
	segments := make([]string, len(rc.segments), len(rc.segments)+1)
	copy(segments, rc.segments)
	segments = append(segments, segment)
	return &ResolveContext{
		segments: segments,
		path:     pool.Join(segments),
		name:     name,
		forceOne: forceOne,
		global:   rc.global,
		parent:   rc.node,
	}
}

// Child returns the context of a property.
func (rc *ResolveContext) Child(name string) *ResolveContext {
	return rc.derive(name, name, false)
}

// Item returns the context of an array element. The element is resolved
// as a single value of the same parameter.
func (rc *ResolveContext) Item(index int) *ResolveContext {
	seg := strconv.Itoa(index)
	return rc.derive(seg, seg, true)
}

// Path returns the dotted path of the position.
func (rc *ResolveContext) Path() string { return rc.path }

// Segments returns a copy of the path segments.
func (rc *ResolveContext) Segments() []string {
	out := make([]string, len(rc.segments))
	copy(out, rc.segments)
	return out
}

// Name returns the key of the position: a property name or an index.
func (rc *ResolveContext) Name() string { return rc.name }

// ForceOne reports whether the position is an array element.
func (rc *ResolveContext) ForceOne() bool { return rc.forceOne }

// Global returns the shared run state.
func (rc *ResolveContext) Global() *GlobalContext { return rc.global }

// Parent returns the enclosing node, or nil at the top level.
func (rc *ResolveContext) Parent() *ExecutionNode { return rc.parent }

// Exists reports whether this occurrence was present in its store.
func (rc *ResolveContext) Exists() bool { return rc.exists }

// Node returns the node created for this position. Positions that failed
// before a node was created, and absent positions without rules, have
// none.
func (rc *ResolveContext) Node() (*ExecutionNode, error) {
	if rc.node == nil {
		return nil, errMissingNode(rc.path)
	}
	return rc.node, nil
}

// PostValidations returns the post-validation records of the run.
func (rc *ResolveContext) PostValidations() []PostValidation {
	return rc.global.PostValidations()
}
