package evo

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Selector picks one parent from the current population. Every ordering
// decision goes through the injected comparator so parsimony pressure
// applies uniformly.
type Selector interface {
	Name() string
	Select(rng *rand.Rand, pop Population, cmp Comparator) (*Individual, error)
}

// TournamentSelector samples Tournsize individuals uniformly with
// replacement and returns the best by comparator order.
type TournamentSelector struct {
	Tournsize int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) Select(rng *rand.Rand, pop Population, cmp Comparator) (*Individual, error) {
	if err := checkTournament(rng, pop, s.Tournsize); err != nil {
		return nil, err
	}
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < s.Tournsize; i++ {
		candidate := pop[rng.Intn(len(pop))]
		if cmp(candidate.Fitness, best.Fitness) < 0 {
			best = candidate
		}
	}
	return best, nil
}

// StochasticTournamentSelector ranks the sampled tournament and selects a
// rank position according to a discrete probability vector, e.g. [0.7 0.3]
// returns the best with probability 0.7 and the runner-up with 0.3. Ranks
// beyond the vector length are never selected. Weakens selection pressure
// to preserve diversity.
type StochasticTournamentSelector struct {
	Tournsize int
	Probs     []float64
}

func (StochasticTournamentSelector) Name() string {
	return "stochastic_tournament"
}

func (s StochasticTournamentSelector) Select(rng *rand.Rand, pop Population, cmp Comparator) (*Individual, error) {
	if err := checkTournament(rng, pop, s.Tournsize); err != nil {
		return nil, err
	}
	if err := ValidateRankProbs(s.Probs, s.Tournsize); err != nil {
		return nil, err
	}

	sample := make([]*Individual, s.Tournsize)
	for i := range sample {
		sample[i] = pop[rng.Intn(len(pop))]
	}
	sort.SliceStable(sample, func(i, j int) bool {
		return cmp(sample[i].Fitness, sample[j].Fitness) < 0
	})

	// The final probability-bearing rank takes the complement, so a vector
	// summing to 1 within tolerance cannot leak picks past the last rank.
	pick := rng.Float64()
	acc := 0.0
	last := len(s.Probs) - 1
	for i, p := range s.Probs[:last] {
		acc += p
		if pick <= acc {
			return sample[i], nil
		}
	}
	return sample[last], nil
}

// ValidateRankProbs checks a stochastic-tournament probability vector:
// non-empty, no negative entries, not longer than the tournament, summing
// to 1 within a small tolerance.
func ValidateRankProbs(probs []float64, tournsize int) error {
	if len(probs) == 0 {
		return fmt.Errorf("stochastic tournament probability vector is required")
	}
	if len(probs) > tournsize {
		return fmt.Errorf("probability vector longer than tournament: %d > %d", len(probs), tournsize)
	}
	total := 0.0
	for i, p := range probs {
		if p < 0 {
			return fmt.Errorf("probability at rank %d must be >= 0: %g", i, p)
		}
		total += p
	}
	if math.Abs(total-1) > 1e-9 {
		return fmt.Errorf("probability vector must sum to 1: got %g", total)
	}
	return nil
}

func checkTournament(rng *rand.Rand, pop Population, tournsize int) error {
	if rng == nil {
		return fmt.Errorf("random source is required")
	}
	if len(pop) == 0 {
		return fmt.Errorf("population is empty")
	}
	if tournsize < 1 {
		return fmt.Errorf("tournament size must be >= 1: %d", tournsize)
	}
	for _, ind := range pop {
		if !ind.Fitness.Valid {
			return fmt.Errorf("individual %s has no fitness", ind.ID)
		}
	}
	return nil
}
