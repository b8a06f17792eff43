package evo

import (
	"math/rand"
	"testing"
)

func rankedPopulation(t *testing.T, raws ...float64) Population {
	t.Helper()
	pop := make(Population, len(raws))
	for i, raw := range raws {
		pop[i] = evaluated(t, raw)
	}
	return pop
}

func TestTournamentFavorsLowerLoss(t *testing.T) {
	pop := rankedPopulation(t, 1, 2, 3, 4)
	sel := TournamentSelector{Tournsize: 2}
	cmp := NewComparator(ParsimonyConfig{})
	rng := rand.New(rand.NewSource(7))

	counts := make(map[string]int)
	for i := 0; i < 2000; i++ {
		ind, err := sel.Select(rng, pop, cmp)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		counts[ind.ID]++
	}

	best, worst := counts[pop[0].ID], counts[pop[3].ID]
	if best <= worst {
		t.Fatalf("best selected %d times, worst %d; tournament exerts no pressure", best, worst)
	}
	// P(best) = 7/16, P(worst) = 1/16; generous bounds.
	if best < 600 {
		t.Fatalf("best selected only %d/2000 times", best)
	}
	if worst > 300 {
		t.Fatalf("worst selected %d/2000 times", worst)
	}
}

func TestTournamentSingleIndividual(t *testing.T) {
	pop := rankedPopulation(t, 1)
	sel := TournamentSelector{Tournsize: 3}
	rng := rand.New(rand.NewSource(1))

	ind, err := sel.Select(rng, pop, NewComparator(ParsimonyConfig{}))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if ind != pop[0] {
		t.Fatal("singleton population must select its only member")
	}
}

func TestTournamentReproducible(t *testing.T) {
	pop := rankedPopulation(t, 5, 1, 4, 2, 3)
	sel := TournamentSelector{Tournsize: 2}
	cmp := NewComparator(ParsimonyConfig{})

	draw := func(seed int64) []string {
		rng := rand.New(rand.NewSource(seed))
		ids := make([]string, 20)
		for i := range ids {
			ind, err := sel.Select(rng, pop, cmp)
			if err != nil {
				t.Fatalf("select: %v", err)
			}
			ids[i] = ind.ID
		}
		return ids
	}

	a, b := draw(42), draw(42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d differs under identical seeds: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestTournamentRejectsInvalidInput(t *testing.T) {
	cmp := NewComparator(ParsimonyConfig{})
	rng := rand.New(rand.NewSource(1))
	sel := TournamentSelector{Tournsize: 2}

	if _, err := sel.Select(rng, nil, cmp); err == nil {
		t.Fatal("empty population should fail")
	}
	if _, err := (TournamentSelector{Tournsize: 0}).Select(rng, rankedPopulation(t, 1), cmp); err == nil {
		t.Fatal("tournsize 0 should fail")
	}
	if _, err := sel.Select(nil, rankedPopulation(t, 1), cmp); err == nil {
		t.Fatal("nil random source should fail")
	}

	unevaluated := rankedPopulation(t, 1, 2)
	unevaluated[1].Fitness = Fitness{}
	if _, err := sel.Select(rng, unevaluated, cmp); err == nil {
		t.Fatal("unevaluated individual should fail")
	}
}

func TestStochasticTournamentSpreadsSelection(t *testing.T) {
	pop := rankedPopulation(t, 1, 2)
	cmp := NewComparator(ParsimonyConfig{})
	rng := rand.New(rand.NewSource(11))

	sel := StochasticTournamentSelector{Tournsize: 2, Probs: []float64{0.7, 0.3}}
	counts := make(map[string]int)
	for i := 0; i < 2000; i++ {
		ind, err := sel.Select(rng, pop, cmp)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		counts[ind.ID]++
	}

	// The runner-up rank wins 30% of the time, so the worse individual is
	// selected far more often than under a deterministic tournament.
	if counts[pop[1].ID] < 200 {
		t.Fatalf("worse individual selected only %d/2000 times", counts[pop[1].ID])
	}
	if counts[pop[0].ID] <= counts[pop[1].ID] {
		t.Fatal("better individual should still dominate")
	}
}

func TestStochasticTournamentResidualMassGoesToLastRank(t *testing.T) {
	pop := rankedPopulation(t, 1, 2)
	cmp := NewComparator(ParsimonyConfig{})
	rng := rand.New(rand.NewSource(13))

	// Sums to 1-1e-10: within validation tolerance, and the tiny residual
	// must land on the runner-up rank rather than anywhere else.
	sel := StochasticTournamentSelector{Tournsize: 2, Probs: []float64{0.7, 0.3 - 1e-10}}
	counts := make(map[string]int)
	for i := 0; i < 2000; i++ {
		ind, err := sel.Select(rng, pop, cmp)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		counts[ind.ID]++
	}
	if counts[pop[0].ID]+counts[pop[1].ID] != 2000 {
		t.Fatalf("selections leaked outside the ranked pair: %v", counts)
	}
	if counts[pop[1].ID] < 200 {
		t.Fatalf("runner-up rank selected only %d/2000 times", counts[pop[1].ID])
	}

	// A single sub-unit entry carries all the mass: rank 0 always wins.
	single := rankedPopulation(t, 1)
	solo := StochasticTournamentSelector{Tournsize: 2, Probs: []float64{1 - 1e-10}}
	for i := 0; i < 200; i++ {
		ind, err := solo.Select(rng, single, cmp)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if ind != single[0] {
			t.Fatal("singleton probability vector must always pick the tournament best")
		}
	}
}

func TestStochasticTournamentReproducible(t *testing.T) {
	pop := rankedPopulation(t, 3, 1, 2)
	sel := StochasticTournamentSelector{Tournsize: 2, Probs: []float64{0.8, 0.2}}
	cmp := NewComparator(ParsimonyConfig{})

	rngA := rand.New(rand.NewSource(9))
	rngB := rand.New(rand.NewSource(9))
	for i := 0; i < 50; i++ {
		a, err := sel.Select(rngA, pop, cmp)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		b, err := sel.Select(rngB, pop, cmp)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if a.ID != b.ID {
			t.Fatalf("draw %d differs under identical seeds", i)
		}
	}
}

func TestValidateRankProbs(t *testing.T) {
	cases := []struct {
		name      string
		probs     []float64
		tournsize int
		wantErr   bool
	}{
		{"valid pair", []float64{0.7, 0.3}, 2, false},
		{"shorter than tournament", []float64{1.0}, 3, false},
		{"empty", nil, 2, true},
		{"negative entry", []float64{1.2, -0.2}, 2, true},
		{"longer than tournament", []float64{0.5, 0.3, 0.2}, 2, true},
		{"does not sum to one", []float64{0.5, 0.4}, 2, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRankProbs(tc.probs, tc.tournsize)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateRankProbs(%v, %d) error = %v, wantErr %v", tc.probs, tc.tournsize, err, tc.wantErr)
			}
		})
	}
}
