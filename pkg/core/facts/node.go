// Package facts models XBRL-derived fact documents as schema-free trees and
// resolves canonical financial concepts inside them. Documents arrive from
// upstream filing sources with no fixed layout: the same concept can appear
// under different tag names, at different nesting depths, encoded as a plain
// number, a scaled pair, or a formatted string. Nothing in this package
// assumes a shape beyond what a Node accessor can verify.
package facts

import "sort"

// Kind discriminates the three shapes a document node can take.
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindMapping
)

// Node is one position in a fact document: a scalar leaf, a list of child
// nodes, or a string-keyed mapping. Traversal strictly descends into child
// values, so every walk terminates by structural induction on depth.
type Node struct {
	kind   Kind
	scalar any
	items  []*Node
	fields map[string]*Node
}

// FromAny wraps a decoded JSON value. Maps become mappings, slices become
// lists, everything else is a scalar leaf (including nil).
func FromAny(v any) *Node {
	switch t := v.(type) {
	case map[string]any:
		fields := make(map[string]*Node, len(t))
		for k, child := range t {
			fields[k] = FromAny(child)
		}
		return &Node{kind: KindMapping, fields: fields}
	case []any:
		items := make([]*Node, 0, len(t))
		for _, child := range t {
			items = append(items, FromAny(child))
		}
		return &Node{kind: KindList, items: items}
	default:
		return &Node{kind: KindScalar, scalar: t}
	}
}

// Kind reports the node's shape. A nil node reads as an empty scalar.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindScalar
	}
	return n.kind
}

// Scalar returns the leaf value, or nil for non-scalar nodes.
func (n *Node) Scalar() any {
	if n == nil || n.kind != KindScalar {
		return nil
	}
	return n.scalar
}

// Field looks up a mapping entry by key.
func (n *Node) Field(name string) (*Node, bool) {
	if n == nil || n.kind != KindMapping {
		return nil, false
	}
	child, ok := n.fields[name]
	return child, ok
}

// FieldKeys returns the mapping's keys in sorted order. JSON decoding does
// not preserve document order, so sorted keys keep traversal deterministic.
func (n *Node) FieldKeys() []string {
	if n == nil || n.kind != KindMapping {
		return nil
	}
	keys := make([]string, 0, len(n.fields))
	for k := range n.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Items returns the list's children, or nil for non-list nodes.
func (n *Node) Items() []*Node {
	if n == nil || n.kind != KindList {
		return nil
	}
	return n.items
}

// Len returns the number of children for lists and mappings, 0 for scalars.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.kind {
	case KindList:
		return len(n.items)
	case KindMapping:
		return len(n.fields)
	default:
		return 0
	}
}
