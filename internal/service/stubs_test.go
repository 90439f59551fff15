package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"codescrybe/internal/domain"
	"codescrybe/internal/domain/models"
	"codescrybe/internal/domain/repositories"
	domainllm "codescrybe/internal/domain/services/llm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubRepoStore keeps repositories in a map keyed by ID.
type stubRepoStore struct {
	repos      map[string]*models.Repository
	statusData map[string]*models.StatusData
	increments []int
	nextID     int
}

func newStubRepoStore(repos ...*models.Repository) *stubRepoStore {
	s := &stubRepoStore{
		repos:      make(map[string]*models.Repository),
		statusData: make(map[string]*models.StatusData),
	}
	for _, r := range repos {
		s.repos[r.ID] = r
	}
	return s
}

func (s *stubRepoStore) Create(ctx context.Context, repo *models.Repository) error {
	s.nextID++
	repo.ID = "repo-" + string(rune('0'+s.nextID))
	repo.CreatedAt = time.Now()
	repo.UpdatedAt = repo.CreatedAt
	s.repos[repo.ID] = repo
	return nil
}

func (s *stubRepoStore) GetByID(ctx context.Context, id string) (*models.Repository, error) {
	repo, ok := s.repos[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "repository not found"}
	}
	return repo, nil
}

func (s *stubRepoStore) GetByURL(ctx context.Context, url string) (*models.Repository, error) {
	for _, r := range s.repos {
		if r.URL == url {
			return r, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "repository not found"}
}

func (s *stubRepoStore) List(ctx context.Context) ([]models.Repository, error) {
	var out []models.Repository
	for _, r := range s.repos {
		out = append(out, *r)
	}
	return out, nil
}

func (s *stubRepoStore) UpdateAnalysis(ctx context.Context, repo *models.Repository) error {
	s.repos[repo.ID] = repo
	return nil
}

func (s *stubRepoStore) UpdateStatus(ctx context.Context, id string, status models.RepositoryStatus, errorMessage *string) error {
	repo, ok := s.repos[id]
	if !ok {
		return &domain.NotFoundError{Message: "repository not found"}
	}
	repo.Status = status
	repo.ErrorMessage = errorMessage
	return nil
}

func (s *stubRepoStore) SetStatusData(ctx context.Context, id string, data *models.StatusData) error {
	s.statusData[id] = data
	return nil
}

func (s *stubRepoStore) GetStatusData(ctx context.Context, id string) (*models.StatusData, error) {
	return s.statusData[id], nil
}

func (s *stubRepoStore) IncrementMessageCount(ctx context.Context, id string, delta int) error {
	s.increments = append(s.increments, delta)
	if repo, ok := s.repos[id]; ok {
		repo.MessageCount += delta
		if repo.MessageCount < 0 {
			repo.MessageCount = 0
		}
	}
	return nil
}

func (s *stubRepoStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.repos[id]; !ok {
		return &domain.NotFoundError{Message: "repository not found"}
	}
	delete(s.repos, id)
	return nil
}

// stubMessageStore records created messages in order.
type stubMessageStore struct {
	created   []*models.ChatMessage
	history   []models.ChatMessage
	lastLimit int
}

func (s *stubMessageStore) Create(ctx context.Context, msg *models.ChatMessage) error {
	msg.ID = "msg"
	msg.Timestamp = time.Now()
	s.created = append(s.created, msg)
	return nil
}

func (s *stubMessageStore) ListByRepository(ctx context.Context, repositoryID string, limit int) ([]models.ChatMessage, error) {
	s.lastLimit = limit
	return s.history, nil
}

func (s *stubMessageStore) DeleteAllByRepository(ctx context.Context, repositoryID string) (int64, error) {
	n := int64(len(s.created) + len(s.history))
	s.created = nil
	s.history = nil
	return n, nil
}

// stubFeatureStore serves canned retrieval results.
type stubFeatureStore struct {
	features []models.GraphFeature
	insights *models.GraphInsights
}

func (s *stubFeatureStore) ReplaceAll(ctx context.Context, repositoryID string, features []models.GraphFeature) error {
	s.features = features
	return nil
}

func (s *stubFeatureStore) Search(ctx context.Context, repositoryID string, terms []string, limit int) ([]models.GraphFeature, error) {
	return s.features, nil
}

func (s *stubFeatureStore) Sample(ctx context.Context, repositoryID string, limit int) ([]models.GraphFeature, error) {
	return s.features, nil
}

func (s *stubFeatureStore) Insights(ctx context.Context, repositoryID string) (*models.GraphInsights, error) {
	return s.insights, nil
}

// stubTxManager runs the function without a transaction.
type stubTxManager struct{}

func (stubTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// stubProvider replies with a fixed string.
type stubProvider struct {
	reply string
}

func (s *stubProvider) Name() string                { return "stub" }
func (s *stubProvider) SupportsModel(m string) bool { return true }

func (s *stubProvider) GenerateResponse(ctx context.Context, req *domainllm.GenerateRequest) (*domainllm.GenerateResponse, error) {
	return &domainllm.GenerateResponse{Text: s.reply, Model: req.Model}, nil
}
