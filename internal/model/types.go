package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord is the persisted header of one engine run.
type RunRecord struct {
	VersionedRecord
	ID             string  `json:"id"`
	CreatedAtUTC   string  `json:"created_at_utc"`
	Seed           int64   `json:"seed"`
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	CrossoverProb  float64 `json:"cxpb"`
	MutationProb   float64 `json:"mutpb"`
	FracElitist    float64 `json:"frac_elitist"`
	NSplits        int     `json:"n_splits"`
	NJobs          int     `json:"n_jobs"`
	StartMethod    string  `json:"start_method"`
	TerminalState  string  `json:"terminal_state"`
	GenerationsRan int     `json:"generations_ran"`
	BestRaw        float64 `json:"best_raw"`
	BestValidation float64 `json:"best_validation"`
}

// GenerationRecord is the persisted per-generation snapshot.
type GenerationRecord struct {
	Generation     int     `json:"generation"`
	BestID         string  `json:"best_id"`
	BestExpression string  `json:"best_expression"`
	BestRaw        float64 `json:"best_raw"`
	BestSize       int     `json:"best_size"`
	MeanRaw        float64 `json:"mean_raw"`
	StdRaw         float64 `json:"std_raw"`
	MinRaw         float64 `json:"min_raw"`
	MaxRaw         float64 `json:"max_raw"`
	Validation     float64 `json:"validation"`
	Overfit        bool    `json:"overfit"`
}

// BestRecord is the persisted final best individual of a run.
type BestRecord struct {
	VersionedRecord
	RunID      string  `json:"run_id"`
	ID         string  `json:"id"`
	Expression string  `json:"expression"`
	Raw        float64 `json:"raw"`
	Size       int     `json:"size"`
}

// LineageRecord feeds genealogy consumers: who produced whom and how.
type LineageRecord struct {
	IndividualID string   `json:"individual_id"`
	ParentIDs    []string `json:"parent_ids,omitempty"`
	Generation   int      `json:"generation"`
	Operation    string   `json:"operation"`
	Size         int      `json:"size"`
}
