package evo

import (
	"errors"
	"fmt"
	"sort"

	"gpsymreg/internal/tree"
)

var (
	ErrUnknownOperator     = errors.New("unknown operator")
	ErrInvalidOperatorArgs = errors.New("invalid operator arguments")
)

// OperatorSpec names an operator together with its keyword arguments. The
// registry resolves specs into bound operators once, at engine
// construction; specs are data, never evaluated as code.
type OperatorSpec struct {
	Name string
	Args map[string]any
}

type crossoverBuilder func(args argMap) (Crossover, error)
type mutationBuilder func(args argMap, ps *tree.PrimitiveSet, expr tree.Generator) (Mutation, error)
type generatorBuilder func(args argMap) (tree.Generator, error)

var crossoverRegistry = map[string]crossoverBuilder{
	"one_point": func(args argMap) (Crossover, error) {
		if err := args.rejectUnknown(); err != nil {
			return nil, err
		}
		return OnePointCrossover{}, nil
	},
	"one_point_leaf_biased": func(args argMap) (Crossover, error) {
		termpb, err := args.probability("termpb")
		if err != nil {
			return nil, err
		}
		if err := args.rejectUnknown(); err != nil {
			return nil, err
		}
		return OnePointLeafBiasedCrossover{TermPB: termpb}, nil
	},
}

var mutationRegistry = map[string]mutationBuilder{
	"uniform": func(args argMap, ps *tree.PrimitiveSet, expr tree.Generator) (Mutation, error) {
		if err := args.rejectUnknown(); err != nil {
			return nil, err
		}
		if expr == nil {
			return nil, fmt.Errorf("%w: uniform mutation requires a subtree generator", ErrInvalidOperatorArgs)
		}
		return UniformMutation{Set: ps, Expr: expr}, nil
	},
	"node_replacement": func(args argMap, ps *tree.PrimitiveSet, _ tree.Generator) (Mutation, error) {
		if err := args.rejectUnknown(); err != nil {
			return nil, err
		}
		return NodeReplacementMutation{Set: ps}, nil
	},
	"insert": func(args argMap, ps *tree.PrimitiveSet, _ tree.Generator) (Mutation, error) {
		if err := args.rejectUnknown(); err != nil {
			return nil, err
		}
		return InsertMutation{Set: ps}, nil
	},
	"shrink": func(args argMap, _ *tree.PrimitiveSet, _ tree.Generator) (Mutation, error) {
		if err := args.rejectUnknown(); err != nil {
			return nil, err
		}
		return ShrinkMutation{}, nil
	},
}

var generatorRegistry = map[string]generatorBuilder{
	"half_and_half": func(args argMap) (tree.Generator, error) {
		min, max, err := args.depthBounds()
		if err != nil {
			return nil, err
		}
		return tree.HalfAndHalf(min, max), nil
	},
	"full": func(args argMap) (tree.Generator, error) {
		min, max, err := args.depthBounds()
		if err != nil {
			return nil, err
		}
		return tree.Full(min, max), nil
	},
	"grow": func(args argMap) (tree.Generator, error) {
		min, max, err := args.depthBounds()
		if err != nil {
			return nil, err
		}
		return tree.Grow(min, max), nil
	},
}

// ResolveCrossover binds a crossover spec to its implementation.
func ResolveCrossover(spec OperatorSpec) (Crossover, error) {
	builder, ok := crossoverRegistry[spec.Name]
	if !ok {
		return nil, fmt.Errorf("%w: crossover %q", ErrUnknownOperator, spec.Name)
	}
	op, err := builder(newArgMap(spec.Args))
	if err != nil {
		return nil, fmt.Errorf("crossover %q: %w", spec.Name, err)
	}
	return op, nil
}

// ResolveMutation binds a mutation spec to its implementation over the
// given primitive set. expr is the subtree generator used by mutations
// that grow new material (uniform); others ignore it.
func ResolveMutation(spec OperatorSpec, ps *tree.PrimitiveSet, expr tree.Generator) (Mutation, error) {
	builder, ok := mutationRegistry[spec.Name]
	if !ok {
		return nil, fmt.Errorf("%w: mutation %q", ErrUnknownOperator, spec.Name)
	}
	op, err := builder(newArgMap(spec.Args), ps, expr)
	if err != nil {
		return nil, fmt.Errorf("mutation %q: %w", spec.Name, err)
	}
	return op, nil
}

// ResolveGenerator binds a subtree-generator spec.
func ResolveGenerator(spec OperatorSpec) (tree.Generator, error) {
	builder, ok := generatorRegistry[spec.Name]
	if !ok {
		return nil, fmt.Errorf("%w: generator %q", ErrUnknownOperator, spec.Name)
	}
	gen, err := builder(newArgMap(spec.Args))
	if err != nil {
		return nil, fmt.Errorf("generator %q: %w", spec.Name, err)
	}
	return gen, nil
}

// CrossoverNames lists the registered crossover operators, sorted.
func CrossoverNames() []string {
	return registryNames(crossoverRegistry)
}

// MutationNames lists the registered mutation operators, sorted.
func MutationNames() []string {
	return registryNames(mutationRegistry)
}

// GeneratorNames lists the registered subtree generators, sorted.
func GeneratorNames() []string {
	return registryNames(generatorRegistry)
}

func registryNames[T any](registry map[string]T) []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// argMap tracks which keyword arguments a builder consumed so leftovers
// can be rejected.
type argMap struct {
	args map[string]any
	used map[string]struct{}
}

func newArgMap(args map[string]any) argMap {
	return argMap{args: args, used: make(map[string]struct{}, len(args))}
}

func (m argMap) probability(key string) (float64, error) {
	v, err := m.float(key)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("%w: %s must be in [0,1]: %g", ErrInvalidOperatorArgs, key, v)
	}
	return v, nil
}

func (m argMap) float(key string) (float64, error) {
	raw, ok := m.args[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidOperatorArgs, key)
	}
	m.used[key] = struct{}{}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidOperatorArgs, key, raw)
}

func (m argMap) int(key string) (int, error) {
	raw, ok := m.args[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidOperatorArgs, key)
	}
	m.used[key] = struct{}{}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	}
	return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidOperatorArgs, key, raw)
}

func (m argMap) depthBounds() (int, int, error) {
	min, err := m.int("min_")
	if err != nil {
		return 0, 0, err
	}
	max, err := m.int("max_")
	if err != nil {
		return 0, 0, err
	}
	if min < 0 {
		return 0, 0, fmt.Errorf("%w: min_ must be >= 0: %d", ErrInvalidOperatorArgs, min)
	}
	if min > max {
		return 0, 0, fmt.Errorf("%w: min_ must be <= max_: %d > %d", ErrInvalidOperatorArgs, min, max)
	}
	if err := m.rejectUnknown(); err != nil {
		return 0, 0, err
	}
	return min, max, nil
}

func (m argMap) rejectUnknown() error {
	for key := range m.args {
		if _, ok := m.used[key]; !ok {
			return fmt.Errorf("%w: unknown argument %q", ErrInvalidOperatorArgs, key)
		}
	}
	return nil
}
