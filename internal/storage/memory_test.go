package storage

import (
	"context"
	"testing"

	"gpsymreg/internal/model"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s
}

func versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := model.RunRecord{
		VersionedRecord: versioned(),
		ID:              "run-1",
		CreatedAtUTC:    "2026-08-26T10:00:00Z",
		Seed:            42,
		PopulationSize:  100,
		TerminalState:   "COMPLETED",
	}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	got, ok, err := s.GetRun(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if got != run {
		t.Fatalf("round-tripped run = %+v", got)
	}

	if _, ok, err := s.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing run: ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreListRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, run := range []model.RunRecord{
		{ID: "old", CreatedAtUTC: "2026-08-24T10:00:00Z"},
		{ID: "new", CreatedAtUTC: "2026-08-26T10:00:00Z"},
		{ID: "mid", CreatedAtUTC: "2026-08-25T10:00:00Z"},
	} {
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != "new" || runs[1].ID != "mid" || runs[2].ID != "old" {
		t.Fatalf("unexpected order: %+v", runs)
	}

	limited, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs limited: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "new" {
		t.Fatalf("limited list = %+v", limited)
	}
}

func TestMemoryStoreSaveRunUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := model.RunRecord{ID: "run-1", TerminalState: "COMPLETED"}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}
	run.TerminalState = "STOPPED_EARLY"
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("resave run: %v", err)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("upsert duplicated run: %d entries", len(runs))
	}
	if runs[0].TerminalState != "STOPPED_EARLY" {
		t.Fatalf("terminal state = %s", runs[0].TerminalState)
	}
}

func TestMemoryStoreGenerationRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []model.GenerationRecord{
		{Generation: 1, BestRaw: 2},
		{Generation: 2, BestRaw: 1},
	}
	if err := s.SaveGenerationRecords(ctx, "run-1", records); err != nil {
		t.Fatalf("save records: %v", err)
	}

	got, ok, err := s.GetGenerationRecords(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get records: ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[1].BestRaw != 1 {
		t.Fatalf("records = %+v", got)
	}

	// Mutating the returned slice must not touch the stored copy.
	got[0].BestRaw = 99
	again, _, err := s.GetGenerationRecords(ctx, "run-1")
	if err != nil {
		t.Fatalf("get records again: %v", err)
	}
	if again[0].BestRaw != 2 {
		t.Fatal("stored records aliased by caller mutation")
	}

	if _, ok, err := s.GetGenerationRecords(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing records: ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreBestAndLineage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	best := model.BestRecord{VersionedRecord: versioned(), RunID: "run-1", ID: "ind-9", Expression: "add(x, x)", Raw: 0.5, Size: 3}
	if err := s.SaveBest(ctx, best); err != nil {
		t.Fatalf("save best: %v", err)
	}
	gotBest, ok, err := s.GetBest(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get best: ok=%v err=%v", ok, err)
	}
	if gotBest != best {
		t.Fatalf("best = %+v", gotBest)
	}

	lineage := []model.LineageRecord{
		{IndividualID: "a", Generation: 0, Operation: "seed", Size: 1},
		{IndividualID: "b", ParentIDs: []string{"a"}, Generation: 1, Operation: "mutation", Size: 2},
	}
	if err := s.SaveLineage(ctx, "run-1", lineage); err != nil {
		t.Fatalf("save lineage: %v", err)
	}
	gotLineage, ok, err := s.GetLineage(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get lineage: ok=%v err=%v", ok, err)
	}
	if len(gotLineage) != 2 || gotLineage[1].Operation != "mutation" {
		t.Fatalf("lineage = %+v", gotLineage)
	}
}
