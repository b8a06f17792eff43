package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gpsymreg/internal/model"
)

// RunArtifacts is everything a finished run exports for external
// consumers: plotting, reporting and post-hoc analysis all read these
// files; nothing in the engine depends on them.
type RunArtifacts struct {
	Run          model.RunRecord          `json:"run"`
	Records      []model.GenerationRecord `json:"records"`
	Best         model.BestRecord         `json:"best"`
	Lineage      []model.LineageRecord    `json:"lineage"`
	TrainHistory []float64                `json:"train_history"`
	ValHistory   []float64                `json:"val_history"`
}

// WriteRunArtifacts lays the run's artifacts out under baseDir/<run id>:
// run.json, generation_records.json, best_expression.txt,
// fitness_history.csv and genealogy.dot. Returns the run directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "run.json"), artifacts.Run); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "generation_records.json"), artifacts.Records); err != nil {
		return "", err
	}
	if err := writeFitnessCSV(filepath.Join(runDir, "fitness_history.csv"), artifacts.TrainHistory, artifacts.ValHistory); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, "best_expression.txt"), []byte(artifacts.Best.Expression+"\n"), 0o644); err != nil {
		return "", err
	}
	dotData, err := GenealogyDOT("genealogy", artifacts.Lineage)
	if err != nil {
		return "", fmt.Errorf("render genealogy: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "genealogy.dot"), dotData, 0o644); err != nil {
		return "", err
	}

	return runDir, nil
}

func writeFitnessCSV(path string, train, val []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"generation", "train_best", "validation"}); err != nil {
		return err
	}
	for i := range train {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(train[i], 'g', -1, 64),
			"",
		}
		if i < len(val) {
			row[2] = strconv.FormatFloat(val[i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
