package tree

import (
	"math/rand"
)

// Generator builds a random expression tree over a primitive set.
type Generator func(ps *PrimitiveSet, rng *rand.Rand) *Node

// Full returns a generator producing trees where every branch reaches
// exactly a depth drawn uniformly from [min, max]. Depth is measured in
// edges: a bare terminal has depth 0.
func Full(min, max int) Generator {
	return func(ps *PrimitiveSet, rng *rand.Rand) *Node {
		depth := min + rng.Intn(max-min+1)
		return buildFull(ps, rng, depth)
	}
}

// Grow returns a generator producing trees whose branches may terminate
// early once the minimum depth is satisfied, up to a maximum depth drawn
// uniformly from [min, max].
func Grow(min, max int) Generator {
	return func(ps *PrimitiveSet, rng *rand.Rand) *Node {
		depth := min + rng.Intn(max-min+1)
		return buildGrow(ps, rng, depth, min)
	}
}

// HalfAndHalf returns a generator that picks Full or Grow with equal
// probability per invocation.
func HalfAndHalf(min, max int) Generator {
	full := Full(min, max)
	grow := Grow(min, max)
	return func(ps *PrimitiveSet, rng *rand.Rand) *Node {
		if rng.Intn(2) == 0 {
			return full(ps, rng)
		}
		return grow(ps, rng)
	}
}

func buildFull(ps *PrimitiveSet, rng *rand.Rand, depth int) *Node {
	if depth <= 0 || len(ps.Primitives()) == 0 {
		return terminalNode(ps, rng)
	}
	prim := pick(ps.Primitives(), rng)
	node := &Node{Op: prim.Name, Arity: prim.Arity, Children: make([]*Node, prim.Arity)}
	for i := range node.Children {
		node.Children[i] = buildFull(ps, rng, depth-1)
	}
	return node
}

func buildGrow(ps *PrimitiveSet, rng *rand.Rand, depth, minDepth int) *Node {
	if depth <= 0 || len(ps.Primitives()) == 0 {
		return terminalNode(ps, rng)
	}
	// Below the minimum depth only primitives are drawn; past it, a leaf
	// terminates the branch with probability equal to the terminal ratio.
	if minDepth <= 0 && rng.Float64() < ps.TerminalRatio() {
		return terminalNode(ps, rng)
	}
	prim := pick(ps.Primitives(), rng)
	node := &Node{Op: prim.Name, Arity: prim.Arity, Children: make([]*Node, prim.Arity)}
	for i := range node.Children {
		node.Children[i] = buildGrow(ps, rng, depth-1, minDepth-1)
	}
	return node
}

func terminalNode(ps *PrimitiveSet, rng *rand.Rand) *Node {
	term := pick(ps.Terminals(), rng)
	return &Node{Op: term.Name, Arity: 0}
}

func pick(symbols []Primitive, rng *rand.Rand) Primitive {
	return symbols[rng.Intn(len(symbols))]
}
