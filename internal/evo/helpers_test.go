package evo

import (
	"testing"

	"gpsymreg/internal/tree"
)

func testSet(t *testing.T) *tree.PrimitiveSet {
	t.Helper()
	ps, err := tree.NewPrimitiveSet([]tree.Primitive{
		{Name: "add", Arity: 2},
		{Name: "mul", Arity: 2},
		{Name: "neg", Arity: 1},
		{Name: "x", Arity: 0},
		{Name: "one", Arity: 0},
	})
	if err != nil {
		t.Fatalf("build primitive set: %v", err)
	}
	return ps
}

func terminal(op string) *tree.Node {
	return &tree.Node{Op: op}
}

// add(x, mul(x, one)): size 5, height 2.
func testTree() *tree.Node {
	return &tree.Node{
		Op: "add", Arity: 2,
		Children: []*tree.Node{
			terminal("x"),
			{Op: "mul", Arity: 2, Children: []*tree.Node{terminal("x"), terminal("one")}},
		},
	}
}

func evaluated(t *testing.T, raw float64) *Individual {
	t.Helper()
	ind := NewIndividual(testTree())
	ind.Fitness = Fitness{Raw: raw, Size: ind.Size(), Valid: true}
	return ind
}
