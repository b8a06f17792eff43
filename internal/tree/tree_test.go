package tree

import (
	"math/rand"
	"testing"
)

func arithmeticSet(t *testing.T) *PrimitiveSet {
	t.Helper()
	ps, err := NewPrimitiveSet([]Primitive{
		{Name: "add", Arity: 2},
		{Name: "mul", Arity: 2},
		{Name: "neg", Arity: 1},
		{Name: "x", Arity: 0},
		{Name: "one", Arity: 0},
	})
	if err != nil {
		t.Fatalf("new primitive set: %v", err)
	}
	return ps
}

func TestNewPrimitiveSetRejectsEmptyTerminals(t *testing.T) {
	_, err := NewPrimitiveSet([]Primitive{{Name: "add", Arity: 2}})
	if err == nil {
		t.Fatal("expected error for set without terminals")
	}
}

func TestNewPrimitiveSetRejectsDuplicates(t *testing.T) {
	_, err := NewPrimitiveSet([]Primitive{
		{Name: "x", Arity: 0},
		{Name: "x", Arity: 0},
	})
	if err == nil {
		t.Fatal("expected error for duplicate names")
	}
}

func TestSizeHeightAndString(t *testing.T) {
	// add(x, mul(x, one))
	root := &Node{Op: "add", Arity: 2, Children: []*Node{
		{Op: "x"},
		{Op: "mul", Arity: 2, Children: []*Node{{Op: "x"}, {Op: "one"}}},
	}}
	if got := root.Size(); got != 5 {
		t.Fatalf("size: got %d want 5", got)
	}
	if got := root.Height(); got != 2 {
		t.Fatalf("height: got %d want 2", got)
	}
	if got := root.String(); got != "add(x, mul(x, one))" {
		t.Fatalf("string: got %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	root := &Node{Op: "neg", Arity: 1, Children: []*Node{{Op: "x"}}}
	clone := root.Clone()
	clone.Children[0].Op = "one"
	if root.Children[0].Op != "x" {
		t.Fatal("clone shares subtree with original")
	}
}

func TestFullGeneratorReachesExactDepth(t *testing.T) {
	ps := arithmeticSet(t)
	rng := rand.New(rand.NewSource(7))
	gen := Full(3, 3)
	for i := 0; i < 50; i++ {
		root := gen(ps, rng)
		if root.Height() != 3 {
			t.Fatalf("full tree height: got %d want 3", root.Height())
		}
		// Every branch of a full tree must reach the target depth.
		var check func(n *Node, depth int)
		check = func(n *Node, depth int) {
			if n.IsTerminal() && depth != 3 {
				t.Fatalf("branch terminated at depth %d", depth)
			}
			for _, child := range n.Children {
				check(child, depth+1)
			}
		}
		check(root, 0)
	}
}

func TestGrowGeneratorRespectsBounds(t *testing.T) {
	ps := arithmeticSet(t)
	rng := rand.New(rand.NewSource(11))
	gen := Grow(1, 4)
	for i := 0; i < 200; i++ {
		root := gen(ps, rng)
		if h := root.Height(); h < 1 || h > 4 {
			t.Fatalf("grow tree height out of bounds: %d", h)
		}
	}
}

func TestHalfAndHalfProducesBothShapes(t *testing.T) {
	ps := arithmeticSet(t)
	rng := rand.New(rand.NewSource(3))
	gen := HalfAndHalf(2, 2)
	heights := map[int]int{}
	sizes := map[int]int{}
	for i := 0; i < 200; i++ {
		root := gen(ps, rng)
		heights[root.Height()]++
		sizes[root.Size()]++
	}
	if len(sizes) < 2 {
		t.Fatalf("expected shape diversity, got sizes %v heights %v", sizes, heights)
	}
}

func TestSlotsEnumerateEveryPosition(t *testing.T) {
	root := &Node{Op: "add", Arity: 2, Children: []*Node{
		{Op: "x"},
		{Op: "neg", Arity: 1, Children: []*Node{{Op: "one"}}},
	}}
	slots := Slots(root)
	if len(slots) != root.Size() {
		t.Fatalf("slots: got %d want %d", len(slots), root.Size())
	}
	if slots[0].Parent != nil {
		t.Fatal("first slot must be the root slot")
	}
	// Replacing through a slot must be visible from the root.
	sub := &Node{Op: "x"}
	got := slots[2].Set(root, sub)
	if got != root {
		t.Fatal("non-root slot must keep the root")
	}
	if root.Children[1] != sub {
		t.Fatal("slot replacement not applied")
	}
	if repl := (Slot{}).Set(root, sub); repl != sub {
		t.Fatal("root slot must return the new root")
	}
}
