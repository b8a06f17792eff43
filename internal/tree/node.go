package tree

import (
	"strings"
)

// Node is one node of a rooted, ordered expression tree. Internal nodes
// carry exactly Arity children; terminals carry none.
type Node struct {
	Op       string
	Arity    int
	Children []*Node
}

// Size returns the node count of the subtree rooted at n.
func (n *Node) Size() int {
	size := 1
	for _, child := range n.Children {
		size += child.Size()
	}
	return size
}

// Height returns the edge count of the longest root-to-leaf path.
// A single terminal has height 0.
func (n *Node) Height() int {
	height := 0
	for _, child := range n.Children {
		if h := child.Height() + 1; h > height {
			height = h
		}
	}
	return height
}

// Clone returns a deep, independent copy: no subtree is shared between the
// original and the copy.
func (n *Node) Clone() *Node {
	out := &Node{Op: n.Op, Arity: n.Arity}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

// IsTerminal reports whether n is a leaf.
func (n *Node) IsTerminal() bool {
	return n.Arity == 0
}

// String renders the subtree in prefix notation, e.g. add(x, mul(x, x)).
func (n *Node) String() string {
	if n.IsTerminal() {
		return n.Op
	}
	var b strings.Builder
	b.WriteString(n.Op)
	b.WriteByte('(')
	for i, child := range n.Children {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(child.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Slot addresses one node position in a tree: the root (nil Parent) or the
// Index-th child link of an internal node. Slots let variation operators
// splice subtrees without every node carrying a parent pointer.
type Slot struct {
	Parent *Node
	Index  int
}

// Get returns the node the slot currently holds.
func (s Slot) Get(root *Node) *Node {
	if s.Parent == nil {
		return root
	}
	return s.Parent.Children[s.Index]
}

// Set places sub into the slot and returns the (possibly new) root.
func (s Slot) Set(root, sub *Node) *Node {
	if s.Parent == nil {
		return sub
	}
	s.Parent.Children[s.Index] = sub
	return root
}

// Slots enumerates every slot of the tree in preorder; Slots(root)[0] is
// the root slot.
func Slots(root *Node) []Slot {
	out := make([]Slot, 0, root.Size())
	out = append(out, Slot{})
	var walk func(n *Node)
	walk = func(n *Node) {
		for i, child := range n.Children {
			out = append(out, Slot{Parent: n, Index: i})
			walk(child)
		}
	}
	walk(root)
	return out
}

// Nodes returns every node of the tree in preorder.
func Nodes(root *Node) []*Node {
	out := make([]*Node, 0, root.Size())
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)
	return out
}
