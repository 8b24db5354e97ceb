package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// GenerationDiagnostics summarizes one generation of a run.
type GenerationDiagnostics struct {
	VersionedRecord
	Generation    int     `json:"generation"`
	BestFitness   float64 `json:"best_fitness"`
	MeanFitness   float64 `json:"mean_fitness"`
	FitnessStdDev float64 `json:"fitness_std_dev"`
	BestLengthAdj float64 `json:"best_length_adj"`
	FrontSize     int     `json:"front_size"`
	Children      int     `json:"children"`
	Invalid       int     `json:"invalid"`
	SortTruncated bool    `json:"sort_truncated,omitempty"`
}

// RunRecord describes a stored run.
type RunRecord struct {
	VersionedRecord
	RunID          string  `json:"run_id"`
	CreatedAtUTC   string  `json:"created_at_utc"`
	GenerationSize int     `json:"generation_size"`
	Generations    int     `json:"generations"`
	Seed           int64   `json:"seed"`
	BestFitness    float64 `json:"best_fitness"`
}
