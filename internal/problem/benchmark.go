package problem

import (
	"context"
	"fmt"
	"math/rand"

	"gpsymreg/internal/config"
	"gpsymreg/internal/evo"
	"gpsymreg/internal/tree"
)

// Benchmark is a ready-to-run symbolic-regression problem: a grammar
// with semantics, a training set split into cross-validation folds and a
// held-out validation set.
type Benchmark struct {
	problem *Problem
	train   Dataset
	folds   []Dataset
	val     Dataset
	penalty config.Penalty
}

// quartic is the classic x^4 + x^3 + x^2 + x regression target.
func quartic(x float64) float64 {
	return x*x*x*x + x*x*x + x*x + x
}

// benchmarkTargets maps problem names to target functions.
var benchmarkTargets = map[string]func(float64) float64{
	"quartic": quartic,
	"sextic":  func(x float64) float64 { return x*x*x*x*x*x - 2*x*x*x*x + x*x },
}

// BenchmarkNames lists the built-in regression targets.
func BenchmarkNames() []string {
	return []string{"quartic", "sextic"}
}

// NewBenchmark samples the named target and prepares the fold layout.
// Sampling is seeded so a run is reproducible end to end.
func NewBenchmark(name string, nSplits int, penalty config.Penalty, seed int64) (*Benchmark, error) {
	target, ok := benchmarkTargets[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem %q", name)
	}
	if err := validatePenalty(penalty); err != nil {
		return nil, err
	}

	set, functions, terminals, err := arithmetic()
	if err != nil {
		return nil, err
	}
	p := &Problem{set: set, functions: functions, terminals: terminals}

	rng := rand.New(rand.NewSource(seed))
	train := Sample(target, 60, -1, 1, rng).Shuffled(rng)
	folds, err := train.KFold(nSplits)
	if err != nil {
		return nil, err
	}
	val := Sample(target, 20, -1, 1, rng)

	return &Benchmark{
		problem: p,
		train:   train,
		folds:   folds,
		val:     val,
		penalty: penalty,
	}, nil
}

func validatePenalty(p config.Penalty) error {
	switch p.Method {
	case "", "length", "primitive":
	default:
		return fmt.Errorf("unknown penalty.method %q", p.Method)
	}
	if p.RegParam < 0 {
		return fmt.Errorf("penalty.reg_param must be >= 0: %g", p.RegParam)
	}
	return nil
}

// Primitives returns the benchmark's grammar.
func (b *Benchmark) Primitives() *tree.PrimitiveSet {
	return b.problem.Primitives()
}

// foldState carries each worker's private copy of the fold data.
type foldState struct {
	folds []Dataset
}

func (s *foldState) Clone() evo.WorkerState {
	folds := make([]Dataset, len(s.folds))
	for i, f := range s.folds {
		folds[i] = Dataset{
			X: append([]float64(nil), f.X...),
			Y: append([]float64(nil), f.Y...),
		}
	}
	return &foldState{folds: folds}
}

// StateFactory builds worker-private fold data.
func (b *Benchmark) StateFactory() evo.WorkerStateFactory {
	return func() (evo.WorkerState, error) {
		base := &foldState{folds: b.folds}
		return base.Clone(), nil
	}
}

// TrainFold scores one individual on one fold: mean squared error over
// the fold's samples plus the configured length penalty. An expression
// leaving the finite domain earns the sentinel worst loss.
func (b *Benchmark) TrainFold() evo.FoldFunc {
	return func(_ context.Context, state evo.WorkerState, ind *evo.Individual, fold int, _ *rand.Rand) (float64, error) {
		fs, ok := state.(*foldState)
		if !ok {
			return 0, fmt.Errorf("unexpected worker state %T", state)
		}
		if fold < 0 || fold >= len(fs.folds) {
			return 0, fmt.Errorf("fold %d out of range [0,%d)", fold, len(fs.folds))
		}
		if err := b.problem.check(ind.Root); err != nil {
			return 0, err
		}
		loss, finite := b.mse(ind.Root, fs.folds[fold])
		if !finite {
			return WorstFitness, nil
		}
		return loss + b.penaltyFor(ind), nil
	}
}

// Validate scores one individual on the held-out validation set.
func (b *Benchmark) Validate() evo.ValidateFunc {
	return func(_ context.Context, ind *evo.Individual) (float64, error) {
		if err := b.problem.check(ind.Root); err != nil {
			return 0, err
		}
		loss, finite := b.mse(ind.Root, b.val)
		if !finite {
			return WorstFitness, nil
		}
		return loss, nil
	}
}

func (b *Benchmark) mse(root *tree.Node, data Dataset) (float64, bool) {
	total := 0.0
	for i, x := range data.X {
		y, ok := b.problem.Eval(root, x)
		if !ok {
			return 0, false
		}
		diff := y - data.Y[i]
		total += diff * diff
	}
	return total / float64(data.Len()), true
}

func (b *Benchmark) penaltyFor(ind *evo.Individual) float64 {
	switch b.penalty.Method {
	case "length":
		return b.penalty.RegParam * float64(ind.Size())
	case "primitive":
		// Penalize the most-repeated function symbol in the expression.
		counts := make(map[string]int)
		most := 0
		for _, n := range tree.Nodes(ind.Root) {
			if n.IsTerminal() {
				continue
			}
			counts[n.Op]++
			if counts[n.Op] > most {
				most = counts[n.Op]
			}
		}
		return b.penalty.RegParam * float64(most)
	}
	return 0
}
