package problem

import (
	"fmt"
	"math"

	"gpsymreg/internal/tree"
)

// WorstFitness is the sentinel loss assigned when an expression leaves
// the finite domain (overflow, division blow-up). Domain errors are a
// statistic, not a failure; the search routes around them.
const WorstFitness = 1e12

// Problem binds a primitive grammar to its numeric semantics. The engine
// itself treats symbols as opaque; only the problem knows how to compute
// them.
type Problem struct {
	set       *tree.PrimitiveSet
	functions map[string]func(args []float64) float64
	terminals map[string]func(x float64) float64
}

// arithmetic is the shared symbolic-regression grammar: protected
// division keeps every expression total.
func arithmetic() (*tree.PrimitiveSet, map[string]func([]float64) float64, map[string]func(float64) float64, error) {
	set, err := tree.NewPrimitiveSet([]tree.Primitive{
		{Name: "add", Arity: 2},
		{Name: "sub", Arity: 2},
		{Name: "mul", Arity: 2},
		{Name: "div", Arity: 2},
		{Name: "neg", Arity: 1},
		{Name: "x", Arity: 0},
		{Name: "one", Arity: 0},
	})
	if err != nil {
		return nil, nil, nil, err
	}
	functions := map[string]func([]float64) float64{
		"add": func(a []float64) float64 { return a[0] + a[1] },
		"sub": func(a []float64) float64 { return a[0] - a[1] },
		"mul": func(a []float64) float64 { return a[0] * a[1] },
		"div": func(a []float64) float64 {
			if math.Abs(a[1]) < 1e-12 {
				return 1
			}
			return a[0] / a[1]
		},
		"neg": func(a []float64) float64 { return -a[0] },
	}
	terminals := map[string]func(float64) float64{
		"x":   func(x float64) float64 { return x },
		"one": func(float64) float64 { return 1 },
	}
	return set, functions, terminals, nil
}

// Primitives returns the problem's grammar.
func (p *Problem) Primitives() *tree.PrimitiveSet {
	return p.set
}

// Eval computes the expression at one input point. The second return is
// false when the value left the finite domain.
func (p *Problem) Eval(root *tree.Node, x float64) (float64, bool) {
	v := p.eval(root, x)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (p *Problem) eval(n *tree.Node, x float64) float64 {
	if n.IsTerminal() {
		return p.terminals[n.Op](x)
	}
	args := make([]float64, len(n.Children))
	for i, child := range n.Children {
		args[i] = p.eval(child, x)
	}
	return p.functions[n.Op](args)
}

func (p *Problem) check(root *tree.Node) error {
	for _, n := range tree.Nodes(root) {
		if n.IsTerminal() {
			if _, ok := p.terminals[n.Op]; !ok {
				return fmt.Errorf("unknown terminal %q", n.Op)
			}
			continue
		}
		if _, ok := p.functions[n.Op]; !ok {
			return fmt.Errorf("unknown function %q", n.Op)
		}
	}
	return nil
}
