package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"codescrybe/internal/domain"
	"codescrybe/internal/domain/models"
	"codescrybe/internal/domain/repositories"
)

// PostgresMessageStore implements the MessageStore interface.
type PostgresMessageStore struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMessageStore creates a new message store.
func NewMessageStore(config *RepositoryConfig) repositories.MessageStore {
	return &PostgresMessageStore{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a chat message
func (s *PostgresMessageStore) Create(ctx context.Context, msg *models.ChatMessage) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (repository_id, role, content, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, timestamp
	`, s.tables.Messages)

	db := GetExecutor(ctx, s.pool)
	err := db.QueryRow(ctx, query,
		msg.RepositoryID,
		msg.Role,
		msg.Content,
		msg.Metadata,
	).Scan(&msg.ID, &msg.Timestamp)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("repository %s: %w", msg.RepositoryID, domain.ErrNotFound)
		}
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

// ListByRepository returns up to limit most-recent messages in
// chronological order
func (s *PostgresMessageStore) ListByRepository(ctx context.Context, repositoryID string, limit int) ([]models.ChatMessage, error) {
	query := fmt.Sprintf(`
		SELECT id, repository_id, role, content, metadata, timestamp
		FROM %s
		WHERE repository_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, s.tables.Messages)

	db := GetExecutor(ctx, s.pool)
	rows, err := db.Query(ctx, query, repositoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		err := rows.Scan(
			&msg.ID,
			&msg.RepositoryID,
			&msg.Role,
			&msg.Content,
			&msg.Metadata,
			&msg.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// The query walks newest-first to apply the limit; flip back to
	// chronological for the caller.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// DeleteAllByRepository clears a repository's chat history
func (s *PostgresMessageStore) DeleteAllByRepository(ctx context.Context, repositoryID string) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE repository_id = $1
	`, s.tables.Messages)

	db := GetExecutor(ctx, s.pool)
	result, err := db.Exec(ctx, query, repositoryID)
	if err != nil {
		return 0, fmt.Errorf("delete messages: %w", err)
	}

	return result.RowsAffected(), nil
}
