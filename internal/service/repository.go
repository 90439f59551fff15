package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"codescrybe/internal/config"
	"codescrybe/internal/domain"
	"codescrybe/internal/domain/models"
	"codescrybe/internal/domain/repositories"
	"codescrybe/internal/domain/services"
	"codescrybe/internal/service/pipeline"
)

// analysisTimeout bounds a single background analysis run.
const analysisTimeout = 30 * time.Minute

// URLValidator checks that a clone URL points at a reachable
// repository. Satisfied by pipeline.Cloner.
type URLValidator interface {
	Validate(ctx context.Context, url string) error
}

// AnalysisRunner executes the analysis pipeline for a repository.
// Satisfied by pipeline.Pipeline.
type AnalysisRunner interface {
	Run(ctx context.Context, repo *models.Repository) error
}

// repositoryService implements the RepositoryService interface
type repositoryService struct {
	repos     repositories.RepositoryStore
	features  repositories.FeatureStore
	validator URLValidator
	runner    AnalysisRunner
	logger    *slog.Logger
}

// NewRepositoryService creates a new repository service
func NewRepositoryService(
	repos repositories.RepositoryStore,
	features repositories.FeatureStore,
	validator URLValidator,
	runner AnalysisRunner,
	logger *slog.Logger,
) services.RepositoryService {
	return &repositoryService{
		repos:     repos,
		features:  features,
		validator: validator,
		runner:    runner,
		logger:    logger,
	}
}

// Create registers a repository and kicks off its analysis. Both the
// duplicate check and the GitHub validation run before anything is
// written, so a rejected request leaves no trace.
func (s *repositoryService) Create(ctx context.Context, req *services.CreateRepositoryRequest) (*models.Repository, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	url := strings.TrimSpace(req.URL)

	existing, err := s.repos.GetByURL(ctx, url)
	if err == nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("repository %s is already registered", existing.Name),
			ResourceType: "repository",
			ResourceID:   existing.ID,
		}
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := s.validator.Validate(ctx, url); err != nil {
		return nil, err
	}

	repo := &models.Repository{
		Name:        pipeline.RepoBaseName(url),
		Description: req.Description,
		URL:         url,
		Status:      models.StatusPending,
	}
	if err := s.repos.Create(ctx, repo); err != nil {
		return nil, err
	}

	s.logger.Info("repository registered",
		"id", repo.ID,
		"name", repo.Name,
		"url", repo.URL,
	)

	// Analysis runs detached from the request context; the client
	// follows along via the status endpoint.
	go s.analyze(repo)

	return repo, nil
}

func (s *repositoryService) analyze(repo *models.Repository) {
	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	if err := s.runner.Run(ctx, repo); err != nil {
		s.logger.Error("background analysis failed", "repository_id", repo.ID, "error", err)
	}
}

// Get retrieves a repository by ID.
func (s *repositoryService) Get(ctx context.Context, id string) (*models.Repository, error) {
	return s.repos.GetByID(ctx, id)
}

// List retrieves all repositories, newest first.
func (s *repositoryService) List(ctx context.Context) ([]models.Repository, error) {
	return s.repos.List(ctx)
}

// Delete removes a repository; messages and features go with it via
// cascade.
func (s *repositoryService) Delete(ctx context.Context, id string) error {
	if err := s.repos.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("repository deleted", "id", id)
	return nil
}

// Status serves the polled progress endpoint. The snapshot may lag the
// status column by one publish; the status column wins.
func (s *repositoryService) Status(ctx context.Context, id string) (*services.RepositoryStatusResponse, error) {
	repo, err := s.repos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &services.RepositoryStatusResponse{
		RepositoryID: repo.ID,
		Name:         repo.Name,
		Status:       repo.Status,
		ErrorMessage: repo.ErrorMessage,
	}

	data, err := s.repos.GetStatusData(ctx, id)
	if err != nil {
		s.logger.Warn("failed to read status snapshot", "repository_id", id, "error", err)
		return resp, nil
	}
	resp.Progress = data
	return resp, nil
}

// Insights aggregates the stored feature graph once analysis is done.
func (s *repositoryService) Insights(ctx context.Context, id string) (*models.GraphInsights, error) {
	repo, err := s.repos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if repo.Status != models.StatusAnalyzed {
		return nil, &domain.NotReadyError{
			Message: fmt.Sprintf("repository %s has no insights yet (status: %s)", repo.Name, repo.Status),
		}
	}
	return s.features.Insights(ctx, id)
}

func (s *repositoryService) validateCreateRequest(req *services.CreateRepositoryRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.URL,
			validation.Required,
			validation.Length(1, config.MaxRepositoryURLLength),
		),
		validation.Field(&req.Description,
			validation.Length(0, config.MaxDescriptionLength),
		),
	)
}
