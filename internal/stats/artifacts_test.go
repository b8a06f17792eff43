package stats

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gpsymreg/internal/model"
)

func testArtifacts() RunArtifacts {
	return RunArtifacts{
		Run: model.RunRecord{ID: "run-1", Seed: 7, PopulationSize: 10, Generations: 2, TerminalState: "COMPLETED"},
		Records: []model.GenerationRecord{
			{Generation: 1, BestID: "a", BestExpression: "x", BestRaw: 2, MeanRaw: 3},
			{Generation: 2, BestID: "b", BestExpression: "add(x, x)", BestRaw: 1, MeanRaw: 2},
		},
		Best: model.BestRecord{RunID: "run-1", ID: "b", Expression: "add(x, x)", Raw: 1, Size: 3},
		Lineage: []model.LineageRecord{
			{IndividualID: "a", Generation: 0, Operation: "seed", Size: 1},
			{IndividualID: "b", ParentIDs: []string{"a"}, Generation: 1, Operation: "mutation", Size: 3},
		},
		TrainHistory: []float64{2, 1},
		ValHistory:   []float64{2.5, 1.5},
	}
}

func TestWriteRunArtifacts(t *testing.T) {
	base := t.TempDir()
	runDir, err := WriteRunArtifacts(base, testArtifacts())
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	if runDir != filepath.Join(base, "run-1") {
		t.Fatalf("run dir = %s", runDir)
	}

	for _, name := range []string{
		"run.json", "generation_records.json", "fitness_history.csv",
		"best_expression.txt", "genealogy.dot",
	} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Fatalf("missing artifact %s: %v", name, err)
		}
	}

	var run model.RunRecord
	data, err := os.ReadFile(filepath.Join(runDir, "run.json"))
	if err != nil {
		t.Fatalf("read run.json: %v", err)
	}
	if err := json.Unmarshal(data, &run); err != nil {
		t.Fatalf("decode run.json: %v", err)
	}
	if run.ID != "run-1" || run.TerminalState != "COMPLETED" {
		t.Fatalf("round-tripped run = %+v", run)
	}

	expr, err := os.ReadFile(filepath.Join(runDir, "best_expression.txt"))
	if err != nil {
		t.Fatalf("read best expression: %v", err)
	}
	if string(expr) != "add(x, x)\n" {
		t.Fatalf("best expression = %q", expr)
	}
}

func TestWriteRunArtifactsCSV(t *testing.T) {
	runDir, err := WriteRunArtifacts(t.TempDir(), testArtifacts())
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	f, err := os.Open(filepath.Join(runDir, "fitness_history.csv"))
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("csv has %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "generation" || rows[0][1] != "train_best" || rows[0][2] != "validation" {
		t.Fatalf("csv header = %v", rows[0])
	}
	if rows[1][0] != "1" || rows[1][1] != "2" || rows[1][2] != "2.5" {
		t.Fatalf("csv first row = %v", rows[1])
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("missing run id should fail")
	}
}
