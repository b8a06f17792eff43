package storage

import (
	"context"

	"gpsymreg/internal/model"
)

// Store defines persistence for engine runs: the run header, the
// per-generation record log, the final best individual and the genealogy.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	SaveGenerationRecords(ctx context.Context, runID string, records []model.GenerationRecord) error
	GetGenerationRecords(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
	SaveBest(ctx context.Context, best model.BestRecord) error
	GetBest(ctx context.Context, runID string) (model.BestRecord, bool, error)
	SaveLineage(ctx context.Context, runID string, lineage []model.LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error)
}
