package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"codescrybe/internal/domain"
	"codescrybe/internal/domain/models"
	"codescrybe/internal/domain/repositories"
)

// PostgresRepositoryStore implements the RepositoryStore interface.
type PostgresRepositoryStore struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewRepositoryStore creates a new repository store.
func NewRepositoryStore(config *RepositoryConfig) repositories.RepositoryStore {
	return &PostgresRepositoryStore{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const repositoryColumns = `id, name, description, language, url, status, message_count, stars,
	last_analyzed, files_analyzed, total_chunks, error_message, created_at, updated_at`

// Create inserts a new repository
func (s *PostgresRepositoryStore) Create(ctx context.Context, repo *models.Repository) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, language, url, status, stars)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, s.tables.Repositories)

	db := GetExecutor(ctx, s.pool)
	err := db.QueryRow(ctx, query,
		repo.Name,
		repo.Description,
		repo.Language,
		repo.URL,
		repo.Status,
		repo.Stars,
	).Scan(&repo.ID, &repo.CreatedAt, &repo.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("repository %s already registered: %w", repo.URL, domain.ErrConflict)
		}
		return fmt.Errorf("create repository: %w", err)
	}

	return nil
}

// GetByID retrieves a repository by ID
func (s *PostgresRepositoryStore) GetByID(ctx context.Context, id string) (*models.Repository, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1
	`, repositoryColumns, s.tables.Repositories)

	db := GetExecutor(ctx, s.pool)
	repo, err := scanRepository(db.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get repository: %w", err)
	}
	return repo, nil
}

// GetByURL retrieves a repository by its normalized clone URL
func (s *PostgresRepositoryStore) GetByURL(ctx context.Context, url string) (*models.Repository, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE url = $1
	`, repositoryColumns, s.tables.Repositories)

	db := GetExecutor(ctx, s.pool)
	repo, err := scanRepository(db.QueryRow(ctx, query, url))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("repository %s: %w", url, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get repository by url: %w", err)
	}
	return repo, nil
}

// List retrieves all repositories, newest first
func (s *PostgresRepositoryStore) List(ctx context.Context) ([]models.Repository, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s ORDER BY created_at DESC
	`, repositoryColumns, s.tables.Repositories)

	db := GetExecutor(ctx, s.pool)
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	var repos []models.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, *repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}

	return repos, nil
}

// UpdateAnalysis writes the fields filled in by the analysis pipeline
func (s *PostgresRepositoryStore) UpdateAnalysis(ctx context.Context, repo *models.Repository) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET description = $1, language = $2, status = $3, last_analyzed = $4,
			files_analyzed = $5, total_chunks = $6, error_message = $7, updated_at = NOW()
		WHERE id = $8
	`, s.tables.Repositories)

	db := GetExecutor(ctx, s.pool)
	result, err := db.Exec(ctx, query,
		repo.Description,
		repo.Language,
		repo.Status,
		repo.LastAnalyzed,
		repo.FilesAnalyzed,
		repo.TotalChunks,
		repo.ErrorMessage,
		repo.ID,
	)
	if err != nil {
		return fmt.Errorf("update repository analysis: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("repository %s: %w", repo.ID, domain.ErrNotFound)
	}
	return nil
}

// UpdateStatus moves a repository to a new pipeline status
func (s *PostgresRepositoryStore) UpdateStatus(ctx context.Context, id string, status models.RepositoryStatus, errorMessage *string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3
	`, s.tables.Repositories)

	db := GetExecutor(ctx, s.pool)
	result, err := db.Exec(ctx, query, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("update repository status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetStatusData writes the fine-grained progress snapshot
func (s *PostgresRepositoryStore) SetStatusData(ctx context.Context, id string, data *models.StatusData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal status data: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET status_data = $1, updated_at = NOW() WHERE id = $2
	`, s.tables.Repositories)

	db := GetExecutor(ctx, s.pool)
	result, err := db.Exec(ctx, query, raw, id)
	if err != nil {
		return fmt.Errorf("set status data: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetStatusData reads the progress snapshot, nil if none was written
func (s *PostgresRepositoryStore) GetStatusData(ctx context.Context, id string) (*models.StatusData, error) {
	query := fmt.Sprintf(`
		SELECT status_data FROM %s WHERE id = $1
	`, s.tables.Repositories)

	db := GetExecutor(ctx, s.pool)
	var raw []byte
	if err := db.QueryRow(ctx, query, id).Scan(&raw); err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get status data: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var data models.StatusData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal status data: %w", err)
	}
	return &data, nil
}

// IncrementMessageCount adjusts the cached chat message counter
func (s *PostgresRepositoryStore) IncrementMessageCount(ctx context.Context, id string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET message_count = GREATEST(message_count + $1, 0), updated_at = NOW()
		WHERE id = $2
	`, s.tables.Repositories)

	db := GetExecutor(ctx, s.pool)
	result, err := db.Exec(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("increment message count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a repository; messages and features cascade
func (s *PostgresRepositoryStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE id = $1
	`, s.tables.Repositories)

	db := GetExecutor(ctx, s.pool)
	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete repository: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("repository %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// scanRepository scans one row in repositoryColumns order.
func scanRepository(row interface{ Scan(dest ...any) error }) (*models.Repository, error) {
	var repo models.Repository
	err := row.Scan(
		&repo.ID,
		&repo.Name,
		&repo.Description,
		&repo.Language,
		&repo.URL,
		&repo.Status,
		&repo.MessageCount,
		&repo.Stars,
		&repo.LastAnalyzed,
		&repo.FilesAnalyzed,
		&repo.TotalChunks,
		&repo.ErrorMessage,
		&repo.CreatedAt,
		&repo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &repo, nil
}
