package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"gpsymreg/internal/evo"
)

// File is the on-disk run configuration. Key names follow the parameter
// files this engine consumes, unusual casing included, so existing
// experiment configs translate one to one.
type File struct {
	GP         GP     `yaml:"gp"`
	Plot       Plot   `yaml:"plot"`
	MP         MP     `yaml:"mp"`
	Seed       int64  `yaml:"seed"`
	Store      Store  `yaml:"store"`
	ExportsDir string `yaml:"exports_dir"`
}

type GP struct {
	NIndividuals int               `yaml:"NINDIVIDUALS"`
	NGen         int               `yaml:"NGEN"`
	CXPB         float64           `yaml:"CXPB"`
	MUTPB        float64           `yaml:"MUTPB"`
	FracElitist  float64           `yaml:"frac_elitist"`
	MinDepth     int               `yaml:"min_"`
	MaxDepth     int               `yaml:"max_"`
	EarlyStop    EarlyStopping     `yaml:"early_stopping"`
	Parsimony    ParsimonyPressure `yaml:"parsimony_pressure"`
	Penalty      Penalty           `yaml:"penalty"`
	Select       Select            `yaml:"select"`
	Crossover    Operator          `yaml:"crossover"`
	Mutate       Mutate            `yaml:"mutate"`
}

type EarlyStopping struct {
	Enabled    bool `yaml:"enabled"`
	MaxOverfit int  `yaml:"max_overfit"`
}

type ParsimonyPressure struct {
	Enabled       bool    `yaml:"enabled"`
	FitnessFirst  bool    `yaml:"fitness_first"`
	ParsimonySize float64 `yaml:"parsimony_size"`
}

// Penalty is opaque to the engine; the evaluation function interprets it.
type Penalty struct {
	Method   string  `yaml:"method"`
	RegParam float64 `yaml:"reg_param"`
}

type Select struct {
	Tournsize  int                  `yaml:"tournsize"`
	Stochastic StochasticTournament `yaml:"stochastic_tournament"`
}

type StochasticTournament struct {
	Enabled bool      `yaml:"enabled"`
	Prob    []float64 `yaml:"prob"`
}

// Operator names a registry entry with its keyword arguments.
type Operator struct {
	Fun   string         `yaml:"fun"`
	Kargs map[string]any `yaml:"kargs"`
}

type Mutate struct {
	Fun          string         `yaml:"fun"`
	Kargs        map[string]any `yaml:"kargs"`
	ExprMut      string         `yaml:"expr_mut"`
	ExprMutKargs map[string]any `yaml:"expr_mut_kargs"`
}

type Plot struct {
	PlotBest          bool `yaml:"plot_best"`
	PlotBestGenealogy bool `yaml:"plot_best_genealogy"`
}

type MP struct {
	NJobs       int    `yaml:"n_jobs"`
	NSplits     int    `yaml:"n_splits"`
	StartMethod string `yaml:"start_method"`
}

type Store struct {
	Kind       string `yaml:"kind"` // memory (default) or sqlite
	SQLitePath string `yaml:"sqlite_path"`
}

// Default returns a configuration that runs out of the box; Load applies
// file values on top of it.
func Default() File {
	return File{
		GP: GP{
			NIndividuals: 100,
			NGen:         20,
			CXPB:         0.8,
			MUTPB:        0.2,
			FracElitist:  0.1,
			MinDepth:     1,
			MaxDepth:     4,
			Select:       Select{Tournsize: 3},
			Crossover:    Operator{Fun: "one_point"},
			Mutate: Mutate{
				Fun:          "uniform",
				ExprMut:      "grow",
				ExprMutKargs: map[string]any{"min_": 0, "max_": 2},
			},
		},
		MP:   MP{NJobs: 1, NSplits: 1, StartMethod: "fork"},
		Seed: 1,
	}
}

// Load reads and decodes a YAML configuration file over the defaults.
// Unknown keys are rejected so a typoed knob fails instead of silently
// falling back to its default.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration bytes over the defaults.
func Parse(data []byte) (File, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ToEngineConfig translates the file into an engine configuration. The
// caller still supplies the problem collaborators (primitive set,
// training and validation functions, worker state). Range validation is
// NewEngine's job; translation never invents values.
func (f File) ToEngineConfig() (evo.Config, error) {
	method, err := evo.ParseStartMethod(f.MP.StartMethod)
	if err != nil {
		return evo.Config{}, fmt.Errorf("mp.start_method: %w", err)
	}
	return evo.Config{
		PopulationSize: f.GP.NIndividuals,
		Generations:    f.GP.NGen,
		CrossoverProb:  f.GP.CXPB,
		MutationProb:   f.GP.MUTPB,
		FracElitist:    f.GP.FracElitist,
		MinDepth:       f.GP.MinDepth,
		MaxDepth:       f.GP.MaxDepth,
		Seed:           f.Seed,
		Parsimony: evo.ParsimonyConfig{
			Enabled:       f.GP.Parsimony.Enabled,
			FitnessFirst:  f.GP.Parsimony.FitnessFirst,
			ParsimonySize: f.GP.Parsimony.ParsimonySize,
		},
		EarlyStopping: evo.EarlyStoppingConfig{
			Enabled:    f.GP.EarlyStop.Enabled,
			MaxOverfit: f.GP.EarlyStop.MaxOverfit,
		},
		Selection: evo.SelectionConfig{
			Tournsize:       f.GP.Select.Tournsize,
			Stochastic:      f.GP.Select.Stochastic.Enabled,
			StochasticProbs: f.GP.Select.Stochastic.Prob,
		},
		Crossover:    evo.OperatorSpec{Name: f.GP.Crossover.Fun, Args: f.GP.Crossover.Kargs},
		Mutation:     evo.OperatorSpec{Name: f.GP.Mutate.Fun, Args: f.GP.Mutate.Kargs},
		MutationExpr: evo.OperatorSpec{Name: f.GP.Mutate.ExprMut, Args: f.GP.Mutate.ExprMutKargs},
		Plan: evo.CVPlan{
			NSplits:     f.MP.NSplits,
			NJobs:       f.MP.NJobs,
			StartMethod: method,
		},
	}, nil
}
