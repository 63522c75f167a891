package paramcheck

import (
	"encoding/json"
	"sync"
)

// CollectMode tells how a node computes its value.
type CollectMode int

const (
	// CollectLeaf nodes hold the result of a validation handler.
	CollectLeaf CollectMode = iota + 1
	// CollectObject nodes build a map from their children.
	CollectObject
	// CollectArray nodes build a slice from their children.
	CollectArray
	// CollectAbsent nodes stand in for a parameter that was not present.
	CollectAbsent
)

func (m CollectMode) String() string {
	switch m {
	case CollectLeaf:
		return "leaf"
	case CollectObject:
		return "object"
	case CollectArray:
		return "array"
	case CollectAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// ExecutionScope holds the top-level nodes of a run. They are siblings of
// each other.
type ExecutionScope struct {
	mu    sync.Mutex
	nodes []*ExecutionNode
}

// Nodes returns the top-level nodes in creation order.
func (s *ExecutionScope) Nodes() NodeList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newNodeList(s.nodes)
}

func (s *ExecutionScope) add(n *ExecutionNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, n)
}

// ExecutionNode records one resolved occurrence of a parameter: a leaf
// value, an object, an array or an absent parameter that carries rules.
// Nodes form the tree rules navigate.
type ExecutionNode struct {
	parameter *Parameter
	mode      CollectMode
	path      string
	name      string
	parent    *ExecutionNode
	scope     *ExecutionScope

	mu       sync.Mutex
	resolved *ResolveResult
	children []*ExecutionNode
}

// newNode creates the node for rc, attaches it to its parent (or to the
// root scope) and registers it for p.
func newNode(rc *ResolveContext, mode CollectMode, p *Parameter) *ExecutionNode {
	n := &ExecutionNode{
		parameter: p,
		mode:      mode,
		path:      rc.path,
		name:      rc.name,
		parent:    rc.parent,
	}
	if n.parent != nil {
		n.parent.addChild(n)
	} else {
		n.scope = rc.global.scope
		n.scope.add(n)
	}
	rc.node = n
	rc.global.registerNode(p, n)
	return n
}

func (n *ExecutionNode) addChild(child *ExecutionNode) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range n.children {
		if c == child {
			return
		}
	}
	n.children = append(n.children, child)
}

func (n *ExecutionNode) resolve(res ResolveResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resolved = &res
}

// invalidate turns an object or array node whose input had the wrong
// type into a failed leaf.
func (n *ExecutionNode) invalidate(raw any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mode = CollectLeaf
	n.resolved = &ResolveResult{Raw: raw, Sanitized: Invalid}
}

// Parameter returns the parameter this node resolves.
func (n *ExecutionNode) Parameter() *Parameter { return n.parameter }

// Mode returns how the node computes its value.
func (n *ExecutionNode) Mode() CollectMode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mode
}

// Path returns the dotted path of the node.
func (n *ExecutionNode) Path() string { return n.path }

// Name returns the property name or the index of the node.
func (n *ExecutionNode) Name() string { return n.name }

// Parent returns the enclosing node, or nil for a top-level node.
func (n *ExecutionNode) Parent() *ExecutionNode { return n.parent }

// IsRoot reports whether the node is top-level.
func (n *ExecutionNode) IsRoot() bool { return n.parent == nil }

// Is reports whether the node resolves p.
func (n *ExecutionNode) Is(p *Parameter) bool { return n.parameter == p }

// Children returns the child nodes in creation order.
func (n *ExecutionNode) Children() NodeList {
	n.mu.Lock()
	defer n.mu.Unlock()
	return newNodeList(n.children)
}

// Siblings returns the other children of the parent, or the other
// top-level nodes for a root node. With filter, only nodes of the given
// parameters are kept.
func (n *ExecutionNode) Siblings(filter ...*Parameter) NodeList {
	var all NodeList
	switch {
	case n.parent != nil:
		all = n.parent.Children()
	case n.scope != nil:
		all = n.scope.Nodes()
	}
	return all.Filter(func(s *ExecutionNode) bool {
		if s == n {
			return false
		}
		if len(filter) == 0 {
			return true
		}
		for _, p := range filter {
			if s.parameter == p {
				return true
			}
		}
		return false
	})
}

// Raw returns the raw input of a leaf node, or nil.
func (n *ExecutionNode) Raw() any {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.resolved == nil {
		return nil
	}
	return n.resolved.Raw
}

// Value returns the node's sanitized value. Leaves return their
// validated value (nil while pending), objects a map of their children by
// name, arrays a slice of their children and absent nodes Missing.
func (n *ExecutionNode) Value() any {
	n.mu.Lock()
	mode := n.mode
	resolved := n.resolved
	children := make([]*ExecutionNode, len(n.children))
	copy(children, n.children)
	n.mu.Unlock()

	switch mode {
	case CollectLeaf:
		if resolved == nil {
			return nil
		}
		return resolved.Sanitized
	case CollectObject:
		out := make(map[string]any, len(children))
		for _, c := range children {
			out[c.parameter.Name()] = c.Value()
		}
		return out
	case CollectArray:
		out := make([]any, 0, len(children))
		for _, c := range children {
			out = append(out, c.Value())
		}
		return out
	case CollectAbsent:
		return Missing
	default:
		panic(errInvalidCollectState())
	}
}

type nodeJSON struct {
	Path     string   `json:"path"`
	Name     string   `json:"name"`
	Mode     string   `json:"mode"`
	Parent   string   `json:"parent,omitempty"`
	Value    any      `json:"value"`
	Raw      any      `json:"raw,omitempty"`
	Children []string `json:"children,omitempty"`
}

// MarshalJSON renders a debug view of the node. Children and parent are
// referenced by path.
func (n *ExecutionNode) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		Path:  n.path,
		Name:  n.name,
		Mode:  n.Mode().String(),
		Value: n.Value(),
		Raw:   n.Raw(),
	}
	if n.parent != nil {
		out.Parent = n.parent.path
	}
	for _, c := range n.Children().nodes {
		out.Children = append(out.Children, c.path)
	}
	return json.Marshal(out)
}
