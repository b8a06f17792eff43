package gpsymreg

import (
	"context"
	"fmt"
	"time"

	"gpsymreg/internal/config"
	"gpsymreg/internal/evo"
	"gpsymreg/internal/model"
	"gpsymreg/internal/problem"
	"gpsymreg/internal/stats"
	"gpsymreg/internal/storage"
)

const (
	defaultExportsDir = "exports"
	defaultDBPath     = "gpsymreg.db"
)

// Options configure a client: where runs persist and where artifacts
// export.
type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
}

// Client is the embedding surface for the engine: start runs, list and
// export them, read genealogies.
type Client struct {
	store      storage.Store
	exportsDir string
}

// RunRequest starts one evolutionary run. Problem names a built-in
// regression target; Config carries the full parameter surface.
type RunRequest struct {
	Problem string
	Config  config.File

	// OnGeneration, when set, observes progress as each generation
	// completes.
	OnGeneration func(Progress)
}

// Progress is one generation's progress report.
type Progress struct {
	Generation  int
	Generations int
	BestRaw     float64
	BestSize    int
	Validation  float64
	Overfit     bool
}

// RunSummary describes a finished run.
type RunSummary struct {
	RunID          string
	Problem        string
	TerminalState  string
	GenerationsRan int
	BestExpression string
	BestRaw        float64
	BestSize       int
	BestValidation float64
	ArtifactsDir   string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID          string
	CreatedAtUTC   string
	Seed           int64
	Population     int
	Generations    int
	GenerationsRan int
	TerminalState  string
	BestRaw        float64
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type LineageRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

// New builds a client over the configured store.
func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, exportsDir: exportsDir}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run executes one evolutionary search to completion and persists the
// run header, generation log, best individual and genealogy.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Problem == "" {
		req.Problem = "quartic"
	}

	engineCfg, err := req.Config.ToEngineConfig()
	if err != nil {
		return RunSummary{}, err
	}
	bench, err := problem.NewBenchmark(req.Problem, engineCfg.Plan.NSplits, req.Config.GP.Penalty, engineCfg.Seed)
	if err != nil {
		return RunSummary{}, err
	}
	engineCfg.Primitives = bench.Primitives()
	engineCfg.Train = bench.TrainFold()
	engineCfg.Validate = bench.Validate()
	engineCfg.State = bench.StateFactory()
	if req.OnGeneration != nil {
		total := engineCfg.Generations
		engineCfg.OnGeneration = func(rec evo.GenerationRecord) {
			req.OnGeneration(Progress{
				Generation:  rec.Generation,
				Generations: total,
				BestRaw:     rec.Best.Fitness.Raw,
				BestSize:    rec.Best.Size(),
				Validation:  rec.Validation,
				Overfit:     rec.Overfit,
			})
		}
	}

	engine, err := evo.NewEngine(engineCfg)
	if err != nil {
		return RunSummary{}, err
	}
	result, err := engine.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := fmt.Sprintf("%s-%d-%d", req.Problem, engineCfg.Seed, now.Unix())

	if err := c.persist(ctx, runID, now, req, engineCfg, result); err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		RunID:          runID,
		Problem:        req.Problem,
		TerminalState:  string(result.State),
		GenerationsRan: len(result.Records),
		BestExpression: result.Best.Expression(),
		BestRaw:        result.Best.Fitness.Raw,
		BestSize:       result.Best.Size(),
		BestValidation: result.ValHistory[len(result.ValHistory)-1],
	}

	if req.Config.Plot.PlotBest || req.Config.Plot.PlotBestGenealogy {
		exportsDir := req.Config.ExportsDir
		if exportsDir == "" {
			exportsDir = c.exportsDir
		}
		export, err := c.Export(ctx, ExportRequest{RunID: runID, OutDir: exportsDir})
		if err != nil {
			return RunSummary{}, err
		}
		summary.ArtifactsDir = export.Directory
	}
	return summary, nil
}

func (c *Client) persist(ctx context.Context, runID string, now time.Time, req RunRequest, cfg evo.Config, result evo.Result) error {
	run := model.RunRecord{
		VersionedRecord: currentVersion(),
		ID:              runID,
		CreatedAtUTC:    now.Format(time.RFC3339),
		Seed:            cfg.Seed,
		PopulationSize:  cfg.PopulationSize,
		Generations:     cfg.Generations,
		CrossoverProb:   cfg.CrossoverProb,
		MutationProb:    cfg.MutationProb,
		FracElitist:     cfg.FracElitist,
		NSplits:         cfg.Plan.NSplits,
		NJobs:           cfg.Plan.NJobs,
		StartMethod:     string(cfg.Plan.StartMethod),
		TerminalState:   string(result.State),
		GenerationsRan:  len(result.Records),
		BestRaw:         result.Best.Fitness.Raw,
		BestValidation:  result.ValHistory[len(result.ValHistory)-1],
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	records := make([]model.GenerationRecord, len(result.Records))
	for i, rec := range result.Records {
		records[i] = model.GenerationRecord{
			Generation:     rec.Generation,
			BestID:         rec.Best.ID,
			BestExpression: rec.Best.Expression(),
			BestRaw:        rec.Best.Fitness.Raw,
			BestSize:       rec.Best.Size(),
			MeanRaw:        rec.Stats.Mean,
			StdRaw:         rec.Stats.Std,
			MinRaw:         rec.Stats.Min,
			MaxRaw:         rec.Stats.Max,
			Validation:     rec.Validation,
			Overfit:        rec.Overfit,
		}
	}
	if err := c.store.SaveGenerationRecords(ctx, runID, records); err != nil {
		return fmt.Errorf("save generation records: %w", err)
	}

	best := model.BestRecord{
		VersionedRecord: currentVersion(),
		RunID:           runID,
		ID:              result.Best.ID,
		Expression:      result.Best.Expression(),
		Raw:             result.Best.Fitness.Raw,
		Size:            result.Best.Size(),
	}
	if err := c.store.SaveBest(ctx, best); err != nil {
		return fmt.Errorf("save best: %w", err)
	}

	lineage := make([]model.LineageRecord, len(result.Lineage))
	for i, rec := range result.Lineage {
		lineage[i] = model.LineageRecord{
			IndividualID: rec.IndividualID,
			ParentIDs:    rec.ParentIDs,
			Generation:   rec.Generation,
			Operation:    rec.Operation,
			Size:         rec.Size,
		}
	}
	if err := c.store.SaveLineage(ctx, runID, lineage); err != nil {
		return fmt.Errorf("save lineage: %w", err)
	}
	return nil
}

// Runs lists persisted runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	runs, err := c.store.ListRuns(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	items := make([]RunItem, len(runs))
	for i, run := range runs {
		items[i] = RunItem{
			RunID:          run.ID,
			CreatedAtUTC:   run.CreatedAtUTC,
			Seed:           run.Seed,
			Population:     run.PopulationSize,
			Generations:    run.Generations,
			GenerationsRan: run.GenerationsRan,
			TerminalState:  run.TerminalState,
			BestRaw:        run.BestRaw,
		}
	}
	return items, nil
}

// Export writes a persisted run's artifacts to disk: run header,
// generation log, fitness history CSV, best expression and genealogy
// DOT.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}

	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("run %s not found", runID)
	}
	records, _, err := c.store.GetGenerationRecords(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	best, _, err := c.store.GetBest(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	lineage, _, err := c.store.GetLineage(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}

	train := make([]float64, len(records))
	val := make([]float64, len(records))
	for i, rec := range records {
		train[i] = rec.BestRaw
		val[i] = rec.Validation
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = c.exportsDir
	}
	dir, err := stats.WriteRunArtifacts(outDir, stats.RunArtifacts{
		Run:          run,
		Records:      records,
		Best:         best,
		Lineage:      lineage,
		TrainHistory: train,
		ValHistory:   val,
	})
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: dir}, nil
}

// Lineage returns a persisted run's genealogy, optionally truncated.
func (c *Client) Lineage(ctx context.Context, req LineageRequest) ([]model.LineageRecord, error) {
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	lineage, ok, err := c.store.GetLineage(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run %s has no lineage", runID)
	}
	if req.Limit > 0 && req.Limit < len(lineage) {
		lineage = lineage[:req.Limit]
	}
	return lineage, nil
}

// FitnessHistory returns the per-generation best training loss of a run.
func (c *Client) FitnessHistory(ctx context.Context, runID string) ([]float64, error) {
	records, ok, err := c.store.GetGenerationRecords(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run %s has no generation records", runID)
	}
	history := make([]float64, len(records))
	for i, rec := range records {
		history[i] = rec.BestRaw
	}
	return history, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", fmt.Errorf("run id or latest is required")
	}
	runs, err := c.store.ListRuns(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs recorded")
	}
	return runs[0].ID, nil
}

func currentVersion() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
}
