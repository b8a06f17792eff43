package evo

import (
	"math/rand"

	"gpsymreg/internal/tree"
)

// Mutation rewrites one tree. The input is owned by the operator (callers
// pass clones) and may be modified in place; the returned root is the
// mutated tree.
type Mutation interface {
	Name() string
	Mutate(rng *rand.Rand, root *tree.Node) *tree.Node
}

// UniformMutation replaces a uniformly chosen subtree with a fresh tree
// drawn from the configured subtree generator.
type UniformMutation struct {
	Set  *tree.PrimitiveSet
	Expr tree.Generator
}

func (UniformMutation) Name() string {
	return "uniform"
}

func (m UniformMutation) Mutate(rng *rand.Rand, root *tree.Node) *tree.Node {
	slots := tree.Slots(root)
	slot := slots[rng.Intn(len(slots))]
	return slot.Set(root, m.Expr(m.Set, rng))
}

// NodeReplacementMutation swaps a single uniformly chosen node for another
// symbol of identical arity, keeping the children intact.
type NodeReplacementMutation struct {
	Set *tree.PrimitiveSet
}

func (NodeReplacementMutation) Name() string {
	return "node_replacement"
}

func (m NodeReplacementMutation) Mutate(rng *rand.Rand, root *tree.Node) *tree.Node {
	nodes := tree.Nodes(root)
	node := nodes[rng.Intn(len(nodes))]
	candidates := m.Set.WithArity(node.Arity)
	if len(candidates) == 0 {
		return root
	}
	node.Op = candidates[rng.Intn(len(candidates))].Name
	return root
}

// InsertMutation splices a new primitive above a uniformly chosen node: the
// original subtree becomes one argument of the inserted primitive and the
// remaining arguments are fresh terminals.
type InsertMutation struct {
	Set *tree.PrimitiveSet
}

func (InsertMutation) Name() string {
	return "insert"
}

func (m InsertMutation) Mutate(rng *rand.Rand, root *tree.Node) *tree.Node {
	prims := m.Set.Primitives()
	if len(prims) == 0 {
		return root
	}
	slots := tree.Slots(root)
	slot := slots[rng.Intn(len(slots))]
	original := slot.Get(root)

	prim := prims[rng.Intn(len(prims))]
	inserted := &tree.Node{Op: prim.Name, Arity: prim.Arity, Children: make([]*tree.Node, prim.Arity)}
	keep := rng.Intn(prim.Arity)
	terms := m.Set.Terminals()
	for i := range inserted.Children {
		if i == keep {
			inserted.Children[i] = original
			continue
		}
		term := terms[rng.Intn(len(terms))]
		inserted.Children[i] = &tree.Node{Op: term.Name, Arity: 0}
	}
	return slot.Set(root, inserted)
}

// ShrinkMutation replaces a uniformly chosen internal subtree with one of
// the terminals already inside it, shrinking the tree. The standard bloat
// counter-measure; a bare terminal passes through unchanged.
type ShrinkMutation struct{}

func (ShrinkMutation) Name() string {
	return "shrink"
}

func (ShrinkMutation) Mutate(rng *rand.Rand, root *tree.Node) *tree.Node {
	slots := tree.Slots(root)
	internal := make([]tree.Slot, 0, len(slots))
	for _, s := range slots {
		if !s.Get(root).IsTerminal() {
			internal = append(internal, s)
		}
	}
	if len(internal) == 0 {
		return root
	}
	slot := internal[rng.Intn(len(internal))]
	sub := slot.Get(root)

	leaves := make([]*tree.Node, 0, sub.Size())
	for _, n := range tree.Nodes(sub) {
		if n.IsTerminal() {
			leaves = append(leaves, n)
		}
	}
	return slot.Set(root, leaves[rng.Intn(len(leaves))])
}

// WithMutationHeightLimit caps mutant height: a mutant exceeding max height
// is discarded in favor of a clone of the original tree.
func WithMutationHeightLimit(inner Mutation, max int) Mutation {
	return heightLimitedMutation{inner: inner, max: max}
}

type heightLimitedMutation struct {
	inner Mutation
	max   int
}

func (m heightLimitedMutation) Name() string {
	return m.inner.Name()
}

func (m heightLimitedMutation) Mutate(rng *rand.Rand, root *tree.Node) *tree.Node {
	keep := root.Clone()
	mutated := m.inner.Mutate(rng, root)
	if mutated.Height() > m.max {
		return keep
	}
	return mutated
}
