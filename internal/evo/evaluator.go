package evo

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sourcegraph/conc/pool"
)

// StartMethod governs how per-worker evaluation state comes to life.
// Workers here are goroutines, so the start method is about state
// initialization, not process creation: fork clones a prototype built at
// evaluator construction, spawn builds every worker's state fresh through
// the factory, forkserver builds one template lazily and clones it per
// worker.
type StartMethod string

const (
	StartMethodFork       StartMethod = "fork"
	StartMethodSpawn      StartMethod = "spawn"
	StartMethodForkServer StartMethod = "forkserver"
)

// ParseStartMethod validates a configured start-method string.
func ParseStartMethod(s string) (StartMethod, error) {
	switch StartMethod(s) {
	case StartMethodFork, StartMethodSpawn, StartMethodForkServer:
		return StartMethod(s), nil
	}
	return "", fmt.Errorf("unknown start method: %q", s)
}

// CVPlan is the immutable cross-validation and parallelism configuration.
type CVPlan struct {
	NSplits     int
	NJobs       int
	StartMethod StartMethod
}

func (p CVPlan) Validate() error {
	if p.NSplits < 1 {
		return fmt.Errorf("mp.n_splits must be >= 1: %d", p.NSplits)
	}
	if p.NJobs < 1 {
		return fmt.Errorf("mp.n_jobs must be >= 1: %d", p.NJobs)
	}
	if _, err := ParseStartMethod(string(p.StartMethod)); err != nil {
		return fmt.Errorf("mp.start_method: %w", err)
	}
	return nil
}

// WorkerState is opaque per-worker evaluation state (datasets, scratch
// buffers, solver handles). Clone must return a state safe to use
// concurrently with the original.
type WorkerState interface {
	Clone() WorkerState
}

// WorkerStateFactory builds a fresh WorkerState from scratch.
type WorkerStateFactory func() (WorkerState, error)

// FoldFunc scores one individual on one cross-validation fold. It receives
// a worker-private state and a task-private random stream; it must not
// touch shared mutable data. A domain error inside the expression is the
// evaluator's own policy decision: return a sentinel worst-case score, not
// an error. Returned errors are fatal for the generation.
type FoldFunc func(ctx context.Context, state WorkerState, ind *Individual, fold int, rng *rand.Rand) (float64, error)

// EvaluationError identifies the individual and fold whose evaluation
// failed. The in-flight generation aborts; no partial fitness is committed.
type EvaluationError struct {
	IndividualID string
	Fold         int
	Err          error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate individual %s fold %d: %v", e.IndividualID, e.Fold, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// EvaluatorConfig assembles a fitness evaluator.
type EvaluatorConfig struct {
	Eval  FoldFunc
	Plan  CVPlan
	State WorkerStateFactory // optional; nil means stateless evaluation
	Seed  int64
}

// Evaluator scores whole populations: every (individual, fold) pair is an
// independent task fanned out over a bounded worker pool, raw per-fold
// scores are aggregated by mean, and fitness is committed to the
// population only after the entire batch succeeds.
type Evaluator struct {
	cfg      EvaluatorConfig
	proto    WorkerState // fork: built eagerly; forkserver: built lazily
	protoSet bool
}

func NewEvaluator(cfg EvaluatorConfig) (*Evaluator, error) {
	if cfg.Eval == nil {
		return nil, fmt.Errorf("fold evaluation function is required")
	}
	if err := cfg.Plan.Validate(); err != nil {
		return nil, err
	}
	e := &Evaluator{cfg: cfg}
	if cfg.State != nil && cfg.Plan.StartMethod == StartMethodFork {
		state, err := cfg.State()
		if err != nil {
			return nil, fmt.Errorf("build prototype worker state: %w", err)
		}
		e.proto = state
		e.protoSet = true
	}
	return e, nil
}

// Evaluate scores the population for one generation. The call blocks until
// every (individual, fold) task completes; on any task failure it returns
// an *EvaluationError and leaves every individual's fitness untouched.
func (e *Evaluator) Evaluate(ctx context.Context, pop Population, generation int) error {
	if len(pop) == 0 {
		return fmt.Errorf("population is empty")
	}

	totalTasks := len(pop) * e.cfg.Plan.NSplits
	jobs := e.cfg.Plan.NJobs
	if jobs > totalTasks {
		jobs = totalTasks
	}

	states, err := e.workerStates(jobs)
	if err != nil {
		return err
	}

	raw := make([][]float64, len(pop))
	for i := range raw {
		raw[i] = make([]float64, e.cfg.Plan.NSplits)
	}

	p := pool.New().
		WithMaxGoroutines(jobs).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for i := range pop {
		for fold := 0; fold < e.cfg.Plan.NSplits; fold++ {
			i, fold := i, fold
			// Each task owns a private copy; the population stays untouched
			// until the commit below.
			ind := pop[i].Clone()
			p.Go(func(ctx context.Context) error {
				var state WorkerState
				if states != nil {
					state = <-states
					defer func() { states <- state }()
				}
				rng := rand.New(rand.NewSource(taskSeed(e.cfg.Seed, generation, i, fold)))
				score, err := e.cfg.Eval(ctx, state, ind, fold, rng)
				if err != nil {
					return &EvaluationError{IndividualID: ind.ID, Fold: fold, Err: err}
				}
				raw[i][fold] = score
				return nil
			})
		}
	}

	if err := p.Wait(); err != nil {
		return err
	}

	// Barrier passed: commit the whole generation at once.
	for i, ind := range pop {
		total := 0.0
		for _, score := range raw[i] {
			total += score
		}
		ind.Fitness = Fitness{
			Raw:   total / float64(e.cfg.Plan.NSplits),
			Size:  ind.Size(),
			Valid: true,
		}
	}
	return nil
}

// workerStates prepares one state per worker in a checkout channel, using
// the configured start-method semantics.
func (e *Evaluator) workerStates(jobs int) (chan WorkerState, error) {
	if e.cfg.State == nil {
		return nil, nil
	}
	if e.cfg.Plan.StartMethod == StartMethodForkServer && !e.protoSet {
		state, err := e.cfg.State()
		if err != nil {
			return nil, fmt.Errorf("build template worker state: %w", err)
		}
		e.proto = state
		e.protoSet = true
	}

	states := make(chan WorkerState, jobs)
	for w := 0; w < jobs; w++ {
		switch e.cfg.Plan.StartMethod {
		case StartMethodSpawn:
			state, err := e.cfg.State()
			if err != nil {
				return nil, fmt.Errorf("build worker state %d: %w", w, err)
			}
			states <- state
		default:
			states <- e.proto.Clone()
		}
	}
	return states, nil
}

// taskSeed derives a deterministic, per-task random seed from the run seed
// and the task coordinates, so duplicated worker state never yields
// correlated random streams.
func taskSeed(seed int64, generation, individual, fold int) int64 {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	x = mix64(x + uint64(generation)*0xbf58476d1ce4e5b9)
	x = mix64(x + uint64(individual)*0x94d049bb133111eb)
	x = mix64(x + uint64(fold)*0xd6e8feb86659fd93)
	return int64(x)
}

// mix64 is the splitmix64 finalizer.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
