package evo

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gpsymreg/internal/stats"
	"gpsymreg/internal/tree"
)

// TerminalState is how a run ended.
type TerminalState string

const (
	StateCompleted    TerminalState = "COMPLETED"
	StateStoppedEarly TerminalState = "STOPPED_EARLY"
)

// SelectionConfig configures parent selection. With Stochastic enabled the
// tournament ranks its sample and draws a rank position from Probs instead
// of always returning the best.
type SelectionConfig struct {
	Tournsize       int
	Stochastic      bool
	StochasticProbs []float64
}

// Config assembles a search engine. Knob names in validation errors follow
// the parameter-file surface (NINDIVIDUALS, CXPB, ...) so a failure points
// straight at the offending configuration key.
type Config struct {
	PopulationSize int     // NINDIVIDUALS
	Generations    int     // NGEN
	CrossoverProb  float64 // CXPB, applied independently per parent pair
	MutationProb   float64 // MUTPB, applied independently per offspring
	FracElitist    float64
	MinDepth       int // min_
	MaxDepth       int // max_
	HeightLimit    int // cap on variation output height; 0 means default
	Seed           int64

	Parsimony     ParsimonyConfig
	EarlyStopping EarlyStoppingConfig
	Selection     SelectionConfig
	Crossover     OperatorSpec
	Mutation      OperatorSpec
	MutationExpr  OperatorSpec // subtree generator for mutations that grow material
	Plan          CVPlan

	Primitives *tree.PrimitiveSet
	Train      FoldFunc
	Validate   ValidateFunc       // optional; nil falls back to best raw fitness
	State      WorkerStateFactory // optional worker-state factory

	// OnGeneration, when set, observes each generation's record as it is
	// appended. Read-only consumers only (progress logging).
	OnGeneration func(GenerationRecord)
}

// DefaultHeightLimit caps offspring tree height during variation.
const DefaultHeightLimit = 17

// ValidateFunc scores one individual on the validation set; the score
// drives early stopping.
type ValidateFunc func(ctx context.Context, ind *Individual) (float64, error)

// GenerationRecord is the per-generation snapshot appended to the run log.
type GenerationRecord struct {
	Generation int
	Best       *Individual
	Stats      stats.Summary
	Validation float64
	Overfit    bool
}

// LineageRecord ties an individual to the parents and operation that
// produced it, for genealogy consumers.
type LineageRecord struct {
	IndividualID string
	ParentIDs    []string
	Generation   int
	Operation    string
	Size         int
}

// Result is a finished run: the final best individual, the append-only
// generation log, the full genealogy and the train/validation histories.
type Result struct {
	Best         *Individual
	Records      []GenerationRecord
	Lineage      []LineageRecord
	TrainHistory []float64
	ValHistory   []float64
	State        TerminalState
}

// Engine drives the generational loop: evaluate, record, check early
// stopping, produce the next population as a new value from the previous
// one.
type Engine struct {
	cfg        Config
	rng        *rand.Rand
	cmp        Comparator
	selector   Selector
	crossover  Crossover
	mutation   Mutation
	evaluator  *Evaluator
	monitor    *Monitor
	eliteCount int
}

// NewEngine validates the whole configuration and resolves every operator
// up front; nothing fails mid-run for configuration reasons.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("NINDIVIDUALS must be > 0: %d", cfg.PopulationSize)
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("NGEN must be > 0: %d", cfg.Generations)
	}
	if cfg.CrossoverProb < 0 || cfg.CrossoverProb > 1 {
		return nil, fmt.Errorf("CXPB must be in [0,1]: %g", cfg.CrossoverProb)
	}
	if cfg.MutationProb < 0 || cfg.MutationProb > 1 {
		return nil, fmt.Errorf("MUTPB must be in [0,1]: %g", cfg.MutationProb)
	}
	if cfg.FracElitist < 0 || cfg.FracElitist > 1 {
		return nil, fmt.Errorf("frac_elitist must be in [0,1]: %g", cfg.FracElitist)
	}
	if cfg.MinDepth < 0 {
		return nil, fmt.Errorf("min_ must be >= 0: %d", cfg.MinDepth)
	}
	if cfg.MinDepth > cfg.MaxDepth {
		return nil, fmt.Errorf("min_ must be <= max_: %d > %d", cfg.MinDepth, cfg.MaxDepth)
	}
	if cfg.Selection.Tournsize < 1 {
		return nil, fmt.Errorf("select.tournsize must be >= 1: %d", cfg.Selection.Tournsize)
	}
	if cfg.Selection.Stochastic {
		if err := ValidateRankProbs(cfg.Selection.StochasticProbs, cfg.Selection.Tournsize); err != nil {
			return nil, fmt.Errorf("select.stochastic_tournament.prob: %w", err)
		}
	}
	if err := cfg.EarlyStopping.Validate(); err != nil {
		return nil, err
	}
	if cfg.Primitives == nil {
		return nil, fmt.Errorf("primitive set is required")
	}
	if cfg.Train == nil {
		return nil, fmt.Errorf("training evaluation function is required")
	}
	if cfg.HeightLimit == 0 {
		cfg.HeightLimit = DefaultHeightLimit
	}
	if cfg.HeightLimit < 0 {
		return nil, fmt.Errorf("height limit must be > 0: %d", cfg.HeightLimit)
	}

	crossover, err := ResolveCrossover(cfg.Crossover)
	if err != nil {
		return nil, err
	}
	var exprGen tree.Generator
	if cfg.MutationExpr.Name != "" {
		exprGen, err = ResolveGenerator(cfg.MutationExpr)
		if err != nil {
			return nil, err
		}
	}
	mutation, err := ResolveMutation(cfg.Mutation, cfg.Primitives, exprGen)
	if err != nil {
		return nil, err
	}

	var selector Selector
	if cfg.Selection.Stochastic {
		selector = StochasticTournamentSelector{
			Tournsize: cfg.Selection.Tournsize,
			Probs:     cfg.Selection.StochasticProbs,
		}
	} else {
		selector = TournamentSelector{Tournsize: cfg.Selection.Tournsize}
	}

	evaluator, err := NewEvaluator(EvaluatorConfig{
		Eval:  cfg.Train,
		Plan:  cfg.Plan,
		State: cfg.State,
		Seed:  cfg.Seed,
	})
	if err != nil {
		return nil, err
	}
	monitor, err := NewMonitor(cfg.EarlyStopping)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		cmp:        NewComparator(cfg.Parsimony),
		selector:   selector,
		crossover:  WithCrossoverHeightLimit(crossover, cfg.HeightLimit),
		mutation:   WithMutationHeightLimit(mutation, cfg.HeightLimit),
		evaluator:  evaluator,
		monitor:    monitor,
		eliteCount: int(math.Floor(cfg.FracElitist * float64(cfg.PopulationSize))),
	}, nil
}

// Comparator exposes the engine's fitness ordering for external ranking.
func (e *Engine) Comparator() Comparator {
	return e.cmp
}

// Run executes the generational loop until the budget is exhausted or the
// early-stopping monitor fires.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	pop := InitPopulation(e.cfg.Primitives, e.cfg.PopulationSize, e.cfg.MinDepth, e.cfg.MaxDepth, e.rng)

	result := Result{
		Records:      make([]GenerationRecord, 0, e.cfg.Generations),
		Lineage:      make([]LineageRecord, 0, e.cfg.PopulationSize*(e.cfg.Generations+1)),
		TrainHistory: make([]float64, 0, e.cfg.Generations),
		ValHistory:   make([]float64, 0, e.cfg.Generations),
	}
	for _, ind := range pop {
		result.Lineage = append(result.Lineage, LineageRecord{
			IndividualID: ind.ID,
			Generation:   0,
			Operation:    "seed",
			Size:         ind.Size(),
		})
	}

	for gen := 0; gen < e.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if err := e.evaluator.Evaluate(ctx, pop, gen); err != nil {
			return Result{}, err
		}

		ranked := e.rank(pop)
		best := ranked[0]

		val := best.Fitness.Raw
		if e.cfg.Validate != nil {
			score, err := e.cfg.Validate(ctx, best)
			if err != nil {
				return Result{}, fmt.Errorf("validate individual %s: %w", best.ID, err)
			}
			val = score
		}
		state := e.monitor.Observe(val)

		record := GenerationRecord{
			Generation: gen + 1,
			Best:       best.Clone(),
			Stats:      summarizeFitness(pop),
			Validation: val,
			Overfit:    e.monitor.Overfit() > 0,
		}
		result.Records = append(result.Records, record)
		result.TrainHistory = append(result.TrainHistory, best.Fitness.Raw)
		result.ValHistory = append(result.ValHistory, val)
		result.Best = record.Best
		if e.cfg.OnGeneration != nil {
			e.cfg.OnGeneration(record)
		}

		if state == MonitorStopped {
			result.State = StateStoppedEarly
			return result, nil
		}
		if gen == e.cfg.Generations-1 {
			break
		}

		next, lineage, err := e.nextGeneration(pop, ranked, gen)
		if err != nil {
			return Result{}, err
		}
		pop = next
		result.Lineage = append(result.Lineage, lineage...)
	}

	result.State = StateCompleted
	return result, nil
}

// rank returns a stably sorted copy of the population, best first by the
// engine's comparator. The input population is not reordered.
func (e *Engine) rank(pop Population) Population {
	ranked := make(Population, len(pop))
	copy(ranked, pop)
	sort.SliceStable(ranked, func(i, j int) bool {
		return e.cmp(ranked[i].Fitness, ranked[j].Fitness) < 0
	})
	return ranked
}

// nextGeneration produces the following population as a new value: elites
// copied unmodified, remaining slots filled by selection + independent
// crossover/mutation.
func (e *Engine) nextGeneration(pop, ranked Population, generation int) (Population, []LineageRecord, error) {
	size := e.cfg.PopulationSize
	next := make(Population, 0, size)
	lineage := make([]LineageRecord, 0, size)
	childGen := generation + 1

	for i := 0; i < e.eliteCount; i++ {
		elite := ranked[i].Clone()
		elite.Operation = "elite"
		next = append(next, elite)
		lineage = append(lineage, LineageRecord{
			IndividualID: elite.ID,
			ParentIDs:    []string{ranked[i].ID},
			Generation:   childGen,
			Operation:    "elite",
			Size:         elite.Size(),
		})
	}

	for len(next) < size {
		p1, err := e.selector.Select(e.rng, pop, e.cmp)
		if err != nil {
			return nil, nil, err
		}
		p2, err := e.selector.Select(e.rng, pop, e.cmp)
		if err != nil {
			return nil, nil, err
		}

		c1 := p1.Clone()
		c2 := p2.Clone()
		crossed := e.rng.Float64() < e.cfg.CrossoverProb
		if crossed {
			c1.Root, c2.Root = e.crossover.Mate(e.rng, c1.Root, c2.Root)
		}

		children := [2]*Individual{c1, c2}
		ownParent := [2]*Individual{p1, p2}
		for i, child := range children {
			if len(next) >= size {
				break
			}
			mutated := e.rng.Float64() < e.cfg.MutationProb
			if mutated {
				child.Root = e.mutation.Mutate(e.rng, child.Root)
			}

			operation := "reproduction"
			parents := []string{ownParent[i].ID}
			switch {
			case crossed && mutated:
				operation = "crossover+mutation"
				parents = []string{p1.ID, p2.ID}
			case crossed:
				operation = "crossover"
				parents = []string{p1.ID, p2.ID}
			case mutated:
				operation = "mutation"
			}
			child.asOffspring(operation, parents...)

			next = append(next, child)
			lineage = append(lineage, LineageRecord{
				IndividualID: child.ID,
				ParentIDs:    parents,
				Generation:   childGen,
				Operation:    operation,
				Size:         child.Size(),
			})
		}
	}

	return next, lineage, nil
}

func summarizeFitness(pop Population) stats.Summary {
	raws := make([]float64, len(pop))
	for i, ind := range pop {
		raws[i] = ind.Fitness.Raw
	}
	return stats.Summarize(raws)
}
