package services

import (
	"context"

	"codescrybe/internal/domain/models"
)

// RepositoryService handles repository registration and the analysis
// lifecycle.
type RepositoryService interface {
	// Create registers a repository and starts its analysis in the
	// background. Returns a conflict error when the URL is already
	// registered.
	Create(ctx context.Context, req *CreateRepositoryRequest) (*models.Repository, error)

	// Get retrieves a repository by ID.
	Get(ctx context.Context, id string) (*models.Repository, error)

	// List retrieves all repositories, newest first.
	List(ctx context.Context) ([]models.Repository, error)

	// Delete removes a repository together with its messages and
	// features.
	Delete(ctx context.Context, id string) error

	// Status returns the repository's pipeline status and, while an
	// analysis is running, the fine-grained progress snapshot.
	Status(ctx context.Context, id string) (*RepositoryStatusResponse, error)

	// Insights aggregates the analyzed feature graph. Fails with a
	// not-ready error until the analysis has completed.
	Insights(ctx context.Context, id string) (*models.GraphInsights, error)
}

// CreateRepositoryRequest represents a repository registration request.
type CreateRepositoryRequest struct {
	URL         string `json:"repo_url"`
	Description string `json:"description,omitempty"`
}

// RepositoryStatusResponse is the payload of the polled status
// endpoint.
type RepositoryStatusResponse struct {
	RepositoryID string                  `json:"repository_id"`
	Name         string                  `json:"name"`
	Status       models.RepositoryStatus `json:"status"`
	ErrorMessage *string                 `json:"error_message,omitempty"`
	Progress     *models.StatusData      `json:"progress,omitempty"`
}
