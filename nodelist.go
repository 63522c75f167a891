package paramcheck

import (
	"encoding/json"
	"iter"
)

// NodeList is an immutable ordered list of execution nodes.
type NodeList struct {
	nodes []*ExecutionNode
}

func newNodeList(nodes []*ExecutionNode) NodeList {
	if len(nodes) == 0 {
		return NodeList{}
	}
	out := make([]*ExecutionNode, len(nodes))
	copy(out, nodes)
	return NodeList{nodes: out}
}

// Len returns the number of nodes.
func (l NodeList) Len() int { return len(l.nodes) }

// Eq returns the node at index i. Negative indexes count from the end.
// It returns nil when i is out of range.
func (l NodeList) Eq(i int) *ExecutionNode {
	if i < 0 {
		i += len(l.nodes)
	}
	if i < 0 || i >= len(l.nodes) {
		return nil
	}
	return l.nodes[i]
}

// First returns the first node, or nil.
func (l NodeList) First() *ExecutionNode { return l.Eq(0) }

// Last returns the last node, or nil.
func (l NodeList) Last() *ExecutionNode { return l.Eq(-1) }

// Filter returns the nodes for which keep returns true.
func (l NodeList) Filter(keep func(*ExecutionNode) bool) NodeList {
	var out []*ExecutionNode
	for _, n := range l.nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return NodeList{nodes: out}
}

// Children returns the children of every node, flattened in order and
// without duplicates.
func (l NodeList) Children() NodeList {
	seen := make(map[*ExecutionNode]struct{})
	var out []*ExecutionNode
	for _, n := range l.nodes {
		for _, c := range n.Children().nodes {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return NodeList{nodes: out}
}

// Includes reports whether n is in the list.
func (l NodeList) Includes(n *ExecutionNode) bool {
	for _, x := range l.nodes {
		if x == n {
			return true
		}
	}
	return false
}

// Values returns the value of every node.
func (l NodeList) Values() []any {
	out := make([]any, len(l.nodes))
	for i, n := range l.nodes {
		out[i] = n.Value()
	}
	return out
}

// Nodes returns a copy of the nodes.
func (l NodeList) Nodes() []*ExecutionNode {
	out := make([]*ExecutionNode, len(l.nodes))
	copy(out, l.nodes)
	return out
}

// All iterates over the nodes with their index.
func (l NodeList) All() iter.Seq2[int, *ExecutionNode] {
	return func(yield func(int, *ExecutionNode) bool) {
		for i, n := range l.nodes {
			if !yield(i, n) {
				return
			}
		}
	}
}

// MarshalJSON encodes the list as an array of nodes.
func (l NodeList) MarshalJSON() ([]byte, error) {
	if l.nodes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.nodes)
}
