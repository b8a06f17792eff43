package evo

import (
	"math/rand"

	"gpsymreg/internal/tree"
)

// Crossover recombines two parent trees into two offspring trees. Inputs
// are owned by the operator (callers pass clones) and may be spliced in
// place; the returned roots are the offspring.
type Crossover interface {
	Name() string
	Mate(rng *rand.Rand, a, b *tree.Node) (*tree.Node, *tree.Node)
}

// OnePointCrossover swaps one uniformly chosen subtree of each parent.
type OnePointCrossover struct{}

func (OnePointCrossover) Name() string {
	return "one_point"
}

func (OnePointCrossover) Mate(rng *rand.Rand, a, b *tree.Node) (*tree.Node, *tree.Node) {
	slotsA := tree.Slots(a)
	slotsB := tree.Slots(b)
	return swapSlots(a, b, slotsA[rng.Intn(len(slotsA))], slotsB[rng.Intn(len(slotsB))])
}

// OnePointLeafBiasedCrossover is one-point crossover whose swap point in
// each parent is, with probability TermPB, restricted to leaves. Biasing
// toward leaf swaps keeps offspring close to their parents.
type OnePointLeafBiasedCrossover struct {
	TermPB float64
}

func (OnePointLeafBiasedCrossover) Name() string {
	return "one_point_leaf_biased"
}

func (c OnePointLeafBiasedCrossover) Mate(rng *rand.Rand, a, b *tree.Node) (*tree.Node, *tree.Node) {
	return swapSlots(a, b, c.pickSlot(rng, a), c.pickSlot(rng, b))
}

func (c OnePointLeafBiasedCrossover) pickSlot(rng *rand.Rand, root *tree.Node) tree.Slot {
	slots := tree.Slots(root)
	wantLeaf := rng.Float64() < c.TermPB
	matching := make([]tree.Slot, 0, len(slots))
	for _, s := range slots {
		if s.Get(root).IsTerminal() == wantLeaf {
			matching = append(matching, s)
		}
	}
	if len(matching) == 0 {
		// A bare-terminal tree has no internal slots (and vice versa).
		matching = slots
	}
	return matching[rng.Intn(len(matching))]
}

func swapSlots(a, b *tree.Node, slotA, slotB tree.Slot) (*tree.Node, *tree.Node) {
	subA := slotA.Get(a)
	subB := slotB.Get(b)
	return slotA.Set(a, subB), slotB.Set(b, subA)
}

// WithCrossoverHeightLimit caps offspring height: a child exceeding max
// height is discarded and replaced by a clone of its first parent, so
// variation never produces trees past the limit.
func WithCrossoverHeightLimit(inner Crossover, max int) Crossover {
	return heightLimitedCrossover{inner: inner, max: max}
}

type heightLimitedCrossover struct {
	inner Crossover
	max   int
}

func (c heightLimitedCrossover) Name() string {
	return c.inner.Name()
}

func (c heightLimitedCrossover) Mate(rng *rand.Rand, a, b *tree.Node) (*tree.Node, *tree.Node) {
	keepA := a.Clone()
	keepB := b.Clone()
	childA, childB := c.inner.Mate(rng, a, b)
	if childA.Height() > c.max {
		childA = keepA
	}
	if childB.Height() > c.max {
		childB = keepB
	}
	return childA, childB
}
