package tree

import (
	"errors"
	"fmt"
)

var (
	ErrNoTerminals    = errors.New("primitive set has no terminals")
	ErrDuplicateName  = errors.New("duplicate primitive name")
	ErrInvalidArity   = errors.New("invalid primitive arity")
	ErrArityUnmatched = errors.New("no primitive with requested arity")
)

// Primitive describes one symbol of the expression grammar: a name and a
// fixed arity. Terminals are primitives with arity zero. The engine never
// interprets primitives; their semantics belong to the evaluation function.
type Primitive struct {
	Name  string
	Arity int
}

// PrimitiveSet is the grammar a tree is built over: internal-node
// primitives (arity >= 1) and leaf terminals (arity == 0). Immutable after
// construction.
type PrimitiveSet struct {
	primitives []Primitive
	terminals  []Primitive
	byArity    map[int][]Primitive
}

func NewPrimitiveSet(symbols []Primitive) (*PrimitiveSet, error) {
	ps := &PrimitiveSet{byArity: make(map[int][]Primitive)}
	seen := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		if sym.Name == "" {
			return nil, fmt.Errorf("primitive name is required")
		}
		if sym.Arity < 0 {
			return nil, fmt.Errorf("%w: %s has arity %d", ErrInvalidArity, sym.Name, sym.Arity)
		}
		if _, ok := seen[sym.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, sym.Name)
		}
		seen[sym.Name] = struct{}{}
		if sym.Arity == 0 {
			ps.terminals = append(ps.terminals, sym)
		} else {
			ps.primitives = append(ps.primitives, sym)
		}
		ps.byArity[sym.Arity] = append(ps.byArity[sym.Arity], sym)
	}
	if len(ps.terminals) == 0 {
		return nil, ErrNoTerminals
	}
	return ps, nil
}

// Primitives returns the internal-node symbols (arity >= 1).
func (ps *PrimitiveSet) Primitives() []Primitive {
	return ps.primitives
}

// Terminals returns the leaf symbols (arity == 0).
func (ps *PrimitiveSet) Terminals() []Primitive {
	return ps.terminals
}

// WithArity returns every symbol of the given arity.
func (ps *PrimitiveSet) WithArity(arity int) []Primitive {
	return ps.byArity[arity]
}

// TerminalRatio is the fraction of terminals over all symbols. Grow-style
// generators use it as the leaf probability at unconstrained depths.
func (ps *PrimitiveSet) TerminalRatio() float64 {
	total := len(ps.terminals) + len(ps.primitives)
	return float64(len(ps.terminals)) / float64(total)
}
