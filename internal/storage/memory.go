package storage

import (
	"context"
	"sort"
	"sync"

	"gpsymreg/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	runOrder    []string
	records     map[string][]model.GenerationRecord
	best        map[string]model.BestRecord
	lineage     map[string][]model.LineageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.runOrder = nil
	s.records = make(map[string][]model.GenerationRecord)
	s.best = make(map[string]model.BestRecord)
	s.lineage = make(map[string][]model.LineageRecord)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; !exists {
		s.runOrder = append(s.runOrder, run.ID)
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := append([]string(nil), s.runOrder...)
	sort.SliceStable(ids, func(i, j int) bool {
		return s.runs[ids[i]].CreatedAtUTC > s.runs[ids[j]].CreatedAtUTC
	})
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	out := make([]model.RunRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.runs[id])
	}
	return out, nil
}

func (s *MemoryStore) SaveGenerationRecords(_ context.Context, runID string, records []model.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[runID] = append([]model.GenerationRecord(nil), records...)
	return nil
}

func (s *MemoryStore) GetGenerationRecords(_ context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.records[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.GenerationRecord(nil), records...), true, nil
}

func (s *MemoryStore) SaveBest(_ context.Context, best model.BestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.best[best.RunID] = best
	return nil
}

func (s *MemoryStore) GetBest(_ context.Context, runID string) (model.BestRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best, ok := s.best[runID]
	return best, ok, nil
}

func (s *MemoryStore) SaveLineage(_ context.Context, runID string, lineage []model.LineageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lineage[runID] = append([]model.LineageRecord(nil), lineage...)
	return nil
}

func (s *MemoryStore) GetLineage(_ context.Context, runID string) ([]model.LineageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lineage, ok := s.lineage[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.LineageRecord(nil), lineage...), true, nil
}
