package models

import (
	"time"
)

// GraphFeature is one extracted knowledge-graph entry for a code
// chunk: what the chunk does plus the entities the extractor found in
// it. Features are written once per analysis run and replaced
// wholesale on re-analysis.
type GraphFeature struct {
	ID           string    `json:"id" db:"id"`
	RepositoryID string    `json:"repository_id" db:"repository_id"`
	File         string    `json:"file"`
	ChunkID      int       `json:"chunk_id"`
	Language     string    `json:"language"`
	Feature      string    `json:"feature"`
	Description  string    `json:"description"`
	Code         string    `json:"code"`
	Functions    []string  `json:"functions,omitempty"`
	Classes      []string  `json:"classes,omitempty"`
	APIs         []string  `json:"apis,omitempty"`
	Dependencies []string  `json:"dependencies,omitempty"`
	Inputs       []string  `json:"inputs,omitempty"`
	Outputs      []string  `json:"outputs,omitempty"`
	SideEffects  []string  `json:"side_effects,omitempty"`
	Requirements []string  `json:"requirements,omitempty"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// GraphInsights summarizes the stored graph for a repository.
type GraphInsights struct {
	Features     int           `json:"features"`
	Functions    int           `json:"functions"`
	Classes      int           `json:"classes"`
	Files        int           `json:"files"`
	APIs         int           `json:"apis"`
	Dependencies int           `json:"dependencies"`
	Languages    []string      `json:"languages"`
	TopFeatures  []FeatureStat `json:"most_important_features"`
	FileStats    []FileStat    `json:"file_distribution"`
}

// FeatureStat ranks a feature by how many entities connect to it.
type FeatureStat struct {
	Feature     string `json:"feature"`
	Description string `json:"description"`
	Connections int    `json:"connections"`
}

// FileStat counts features per source file.
type FileStat struct {
	Filename     string `json:"filename"`
	Language     string `json:"language"`
	FeatureCount int    `json:"feature_count"`
}
