package evo

import (
	"math/rand"
	"testing"

	"gpsymreg/internal/tree"
)

func TestOnePointCrossoverConservesNodes(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	op := OnePointCrossover{}

	for i := 0; i < 100; i++ {
		a, b := testTree(), testTree()
		total := a.Size() + b.Size()
		ca, cb := op.Mate(rng, a, b)
		if got := ca.Size() + cb.Size(); got != total {
			t.Fatalf("node count changed: %d -> %d", total, got)
		}
	}
}

func TestLeafBiasedCrossoverSwapsLeaves(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	op := OnePointLeafBiasedCrossover{TermPB: 1}

	for i := 0; i < 100; i++ {
		a, b := testTree(), testTree()
		sizeA, sizeB := a.Size(), b.Size()
		ca, cb := op.Mate(rng, a, b)
		// Leaf-for-leaf swaps leave both sizes unchanged.
		if ca.Size() != sizeA || cb.Size() != sizeB {
			t.Fatalf("leaf swap changed sizes: (%d,%d) -> (%d,%d)", sizeA, sizeB, ca.Size(), cb.Size())
		}
	}
}

func TestLeafBiasedCrossoverBareTerminal(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	op := OnePointLeafBiasedCrossover{TermPB: 0}

	// A bare terminal has no internal slot; the operator must fall back
	// instead of panicking.
	ca, cb := op.Mate(rng, terminal("x"), testTree())
	if ca == nil || cb == nil {
		t.Fatal("crossover returned nil offspring")
	}
}

type fixedCrossover struct {
	out *tree.Node
}

func (fixedCrossover) Name() string { return "fixed" }

func (c fixedCrossover) Mate(_ *rand.Rand, a, b *tree.Node) (*tree.Node, *tree.Node) {
	return c.out, b
}

func TestCrossoverHeightLimitRevertsTallChild(t *testing.T) {
	tall := terminal("x")
	for i := 0; i < 20; i++ {
		tall = &tree.Node{Op: "neg", Arity: 1, Children: []*tree.Node{tall}}
	}
	op := WithCrossoverHeightLimit(fixedCrossover{out: tall}, 17)

	a, b := testTree(), testTree()
	wantA, wantB := a.String(), b.String()
	ca, cb := op.Mate(rand.New(rand.NewSource(1)), a, b)
	if ca.String() != wantA {
		t.Fatalf("tall child not reverted: got %s", ca.String())
	}
	if cb.String() != wantB {
		t.Fatalf("valid child altered: got %s", cb.String())
	}
}

func TestCrossoverHeightLimitPassesValidChild(t *testing.T) {
	op := WithCrossoverHeightLimit(OnePointCrossover{}, 17)
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 100; i++ {
		ca, cb := op.Mate(rng, testTree(), testTree())
		if ca.Height() > 17 || cb.Height() > 17 {
			t.Fatalf("offspring exceeds height limit: %d, %d", ca.Height(), cb.Height())
		}
	}
}
