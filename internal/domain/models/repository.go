package models

import (
	"time"
)

// RepositoryStatus tracks a repository through the analysis pipeline.
type RepositoryStatus string

const (
	StatusPending            RepositoryStatus = "pending"
	StatusCloning            RepositoryStatus = "cloning"
	StatusParsing            RepositoryStatus = "parsing"
	StatusExtractingFeatures RepositoryStatus = "extracting_features"
	StatusStoringData        RepositoryStatus = "storing_data"
	StatusCleaningUp         RepositoryStatus = "cleaning_up"
	StatusAnalyzed           RepositoryStatus = "analyzed"
	StatusError              RepositoryStatus = "error"
)

// Terminal reports whether the pipeline has finished with this status,
// successfully or not. Non-terminal statuses are the ones the frontend
// keeps polling on.
func (s RepositoryStatus) Terminal() bool {
	return s == StatusAnalyzed || s == StatusError
}

// Repository is a source repository registered for analysis and chat.
type Repository struct {
	ID            string           `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Description   string           `json:"description" db:"description"`
	Language      string           `json:"language" db:"language"`
	URL           string           `json:"url" db:"url"`
	Status        RepositoryStatus `json:"status" db:"status"`
	MessageCount  int              `json:"message_count" db:"message_count"`
	Stars         int              `json:"stars" db:"stars"`
	LastAnalyzed  *time.Time       `json:"last_analyzed,omitempty" db:"last_analyzed"`
	FilesAnalyzed int              `json:"files_analyzed" db:"files_analyzed"`
	TotalChunks   int              `json:"total_chunks" db:"total_chunks"`
	ErrorMessage  *string          `json:"error_message,omitempty" db:"error_message"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// StatusData is the fine-grained progress snapshot written by the
// pipeline after every step and served verbatim from the status
// endpoint. The frontend polls it every two seconds while the
// repository is in a non-terminal status.
type StatusData struct {
	CurrentStep        string         `json:"current_step"`
	TotalSteps         int            `json:"total_steps"`
	CompletedSteps     int            `json:"completed_steps"`
	CurrentOperation   string         `json:"current_operation"`
	StartTime          time.Time      `json:"start_time"`
	LastUpdate         time.Time      `json:"last_update"`
	ProgressPercentage float64        `json:"progress_percentage"`
	ETASeconds         *int           `json:"eta_seconds,omitempty"`
	FilesDiscovered    int            `json:"files_discovered"`
	Warnings           []string       `json:"warnings,omitempty"`
	DetailedProgress   map[string]any `json:"detailed_progress,omitempty"`
}
