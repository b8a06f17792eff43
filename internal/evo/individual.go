package evo

import (
	"math/rand"

	"github.com/google/uuid"

	"gpsymreg/internal/tree"
)

// Fitness is the two-component score of an evaluated individual: raw
// training loss (lower is better) and tree size. Valid distinguishes an
// evaluated zero from an unevaluated individual.
type Fitness struct {
	Raw   float64
	Size  int
	Valid bool
}

// Individual is one candidate program. ParentIDs and Operation describe
// how it came to exist, for genealogy consumers.
type Individual struct {
	ID        string
	Root      *tree.Node
	Fitness   Fitness
	ParentIDs []string
	Operation string
}

// NewIndividual wraps a tree in a freshly identified, unevaluated
// individual.
func NewIndividual(root *tree.Node) *Individual {
	return &Individual{ID: uuid.NewString(), Root: root}
}

// Clone deep-copies the individual, keeping its identity and fitness.
// Elites survive generations through Clone; variation goes through
// asOffspring to take on a new identity.
func (ind *Individual) Clone() *Individual {
	parents := make([]string, len(ind.ParentIDs))
	copy(parents, ind.ParentIDs)
	return &Individual{
		ID:        ind.ID,
		Root:      ind.Root.Clone(),
		Fitness:   ind.Fitness,
		ParentIDs: parents,
		Operation: ind.Operation,
	}
}

// Size is the individual's node count.
func (ind *Individual) Size() int {
	return ind.Root.Size()
}

// Expression renders the tree in prefix notation.
func (ind *Individual) Expression() string {
	return ind.Root.String()
}

// asOffspring re-identifies a varied clone: fresh ID, invalidated
// fitness, recorded provenance.
func (ind *Individual) asOffspring(operation string, parentIDs ...string) {
	ind.ID = uuid.NewString()
	ind.Fitness = Fitness{}
	ind.ParentIDs = parentIDs
	ind.Operation = operation
}

// Population is an ordered collection of individuals.
type Population []*Individual

// InitPopulation builds a ramped initial population: individuals
// alternate between full and grow generation so early trees cover both
// bushy and sparse shapes.
func InitPopulation(ps *tree.PrimitiveSet, size, minDepth, maxDepth int, rng *rand.Rand) Population {
	full := tree.Full(minDepth, maxDepth)
	grow := tree.Grow(minDepth, maxDepth)

	pop := make(Population, size)
	for i := range pop {
		gen := full
		if i%2 == 1 {
			gen = grow
		}
		ind := NewIndividual(gen(ps, rng))
		ind.Operation = "seed"
		pop[i] = ind
	}
	return pop
}
