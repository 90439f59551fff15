package repositories

import (
	"context"

	"codescrybe/internal/domain/models"
)

// RepositoryStore defines data access for registered repositories.
type RepositoryStore interface {
	// Create inserts a new repository and fills in the generated ID
	// and timestamps.
	Create(ctx context.Context, repo *models.Repository) error

	// GetByID retrieves a repository by ID.
	GetByID(ctx context.Context, id string) (*models.Repository, error)

	// GetByURL retrieves a repository by its normalized clone URL.
	GetByURL(ctx context.Context, url string) (*models.Repository, error)

	// List retrieves all repositories, newest first.
	List(ctx context.Context) ([]models.Repository, error)

	// UpdateAnalysis writes the fields the pipeline fills in: detected
	// language, file and chunk counts, last_analyzed, and status.
	UpdateAnalysis(ctx context.Context, repo *models.Repository) error

	// UpdateStatus moves a repository to a new pipeline status. The
	// error message is set for StatusError and cleared otherwise.
	UpdateStatus(ctx context.Context, id string, status models.RepositoryStatus, errorMessage *string) error

	// SetStatusData writes the fine-grained progress snapshot.
	SetStatusData(ctx context.Context, id string, data *models.StatusData) error

	// GetStatusData reads the progress snapshot; nil when the pipeline
	// has not written one yet.
	GetStatusData(ctx context.Context, id string) (*models.StatusData, error)

	// IncrementMessageCount adjusts the cached chat message counter.
	IncrementMessageCount(ctx context.Context, id string, delta int) error

	// Delete removes a repository and, via cascade, its messages and
	// features.
	Delete(ctx context.Context, id string) error
}

// MessageStore defines data access for chat history.
type MessageStore interface {
	// Create inserts a message and fills in the generated ID and
	// timestamp.
	Create(ctx context.Context, msg *models.ChatMessage) error

	// ListByRepository returns up to limit of the most recent messages
	// in chronological order.
	ListByRepository(ctx context.Context, repositoryID string, limit int) ([]models.ChatMessage, error)

	// DeleteAllByRepository clears a repository's chat history and
	// reports how many messages were removed.
	DeleteAllByRepository(ctx context.Context, repositoryID string) (int64, error)
}

// FeatureStore defines data access for extracted code features.
type FeatureStore interface {
	// ReplaceAll atomically swaps a repository's feature set for the
	// given one. Called once per analysis run.
	ReplaceAll(ctx context.Context, repositoryID string, features []models.GraphFeature) error

	// Search returns features matching any of the terms, most
	// connected first.
	Search(ctx context.Context, repositoryID string, terms []string, limit int) ([]models.GraphFeature, error)

	// Sample returns up to limit features regardless of terms, used as
	// a retrieval fallback when keyword search comes up empty.
	Sample(ctx context.Context, repositoryID string, limit int) ([]models.GraphFeature, error)

	// Insights aggregates the stored feature set for the insights
	// endpoint.
	Insights(ctx context.Context, repositoryID string) (*models.GraphInsights, error)
}
