package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"codescrybe/internal/domain/models"
	"codescrybe/internal/domain/repositories"
)

// PostgresFeatureStore implements the FeatureStore interface.
type PostgresFeatureStore struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFeatureStore creates a new feature store.
func NewFeatureStore(config *RepositoryConfig) repositories.FeatureStore {
	return &PostgresFeatureStore{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const featureColumns = `id, repository_id, file, chunk_id, language, feature, description, code,
	functions, classes, apis, dependencies, inputs, outputs, side_effects, requirements, created_at`

// ReplaceAll swaps a repository's feature set. Run inside a
// transaction so a failed re-analysis never leaves the set half
// replaced.
func (s *PostgresFeatureStore) ReplaceAll(ctx context.Context, repositoryID string, features []models.GraphFeature) error {
	db := GetExecutor(ctx, s.pool)

	deleteQuery := fmt.Sprintf(`
		DELETE FROM %s WHERE repository_id = $1
	`, s.tables.Features)
	if _, err := db.Exec(ctx, deleteQuery, repositoryID); err != nil {
		return fmt.Errorf("clear features: %w", err)
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (repository_id, file, chunk_id, language, feature, description, code,
			functions, classes, apis, dependencies, inputs, outputs, side_effects, requirements)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, s.tables.Features)

	for _, f := range features {
		_, err := db.Exec(ctx, insertQuery,
			repositoryID,
			f.File,
			f.ChunkID,
			f.Language,
			f.Feature,
			f.Description,
			f.Code,
			f.Functions,
			f.Classes,
			f.APIs,
			f.Dependencies,
			f.Inputs,
			f.Outputs,
			f.SideEffects,
			f.Requirements,
		)
		if err != nil {
			return fmt.Errorf("insert feature %s#%d: %w", f.File, f.ChunkID, err)
		}
	}

	return nil
}

// Search returns features matching any term in their name,
// description, file path, or extracted entity lists, most connected
// first
func (s *PostgresFeatureStore) Search(ctx context.Context, repositoryID string, terms []string, limit int) ([]models.GraphFeature, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	patterns := make([]string, 0, len(terms))
	for _, t := range terms {
		patterns = append(patterns, "%"+t+"%")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE repository_id = $1
		  AND (feature ILIKE ANY($2)
			OR description ILIKE ANY($2)
			OR file ILIKE ANY($2)
			OR EXISTS (SELECT 1 FROM unnest(functions || classes || apis) AS e WHERE e ILIKE ANY($2)))
		ORDER BY cardinality(functions) + cardinality(classes) + cardinality(apis) + cardinality(dependencies) DESC
		LIMIT $3
	`, featureColumns, s.tables.Features)

	db := GetExecutor(ctx, s.pool)
	rows, err := db.Query(ctx, query, repositoryID, patterns, limit)
	if err != nil {
		return nil, fmt.Errorf("search features: %w", err)
	}
	defer rows.Close()

	return collectFeatures(rows)
}

// Sample returns the most connected features regardless of terms
func (s *PostgresFeatureStore) Sample(ctx context.Context, repositoryID string, limit int) ([]models.GraphFeature, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE repository_id = $1
		ORDER BY cardinality(functions) + cardinality(classes) + cardinality(apis) + cardinality(dependencies) DESC
		LIMIT $2
	`, featureColumns, s.tables.Features)

	db := GetExecutor(ctx, s.pool)
	rows, err := db.Query(ctx, query, repositoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("sample features: %w", err)
	}
	defer rows.Close()

	return collectFeatures(rows)
}

// Insights aggregates the stored feature set
func (s *PostgresFeatureStore) Insights(ctx context.Context, repositoryID string) (*models.GraphInsights, error) {
	db := GetExecutor(ctx, s.pool)
	insights := &models.GraphInsights{}

	countsQuery := fmt.Sprintf(`
		SELECT COUNT(*),
			COUNT(DISTINCT file),
			COALESCE(SUM(cardinality(functions)), 0),
			COALESCE(SUM(cardinality(classes)), 0),
			COALESCE(SUM(cardinality(apis)), 0),
			COALESCE(SUM(cardinality(dependencies)), 0)
		FROM %s
		WHERE repository_id = $1
	`, s.tables.Features)

	err := db.QueryRow(ctx, countsQuery, repositoryID).Scan(
		&insights.Features,
		&insights.Files,
		&insights.Functions,
		&insights.Classes,
		&insights.APIs,
		&insights.Dependencies,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate feature counts: %w", err)
	}

	languagesQuery := fmt.Sprintf(`
		SELECT DISTINCT language FROM %s
		WHERE repository_id = $1 AND language <> ''
		ORDER BY language
	`, s.tables.Features)

	rows, err := db.Query(ctx, languagesQuery, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list feature languages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		insights.Languages = append(insights.Languages, lang)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate languages: %w", err)
	}

	topQuery := fmt.Sprintf(`
		SELECT feature, description,
			cardinality(functions) + cardinality(classes) + cardinality(apis) + cardinality(dependencies) AS connections
		FROM %s
		WHERE repository_id = $1
		ORDER BY connections DESC
		LIMIT 10
	`, s.tables.Features)

	topRows, err := db.Query(ctx, topQuery, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("rank features: %w", err)
	}
	defer topRows.Close()
	for topRows.Next() {
		var stat models.FeatureStat
		if err := topRows.Scan(&stat.Feature, &stat.Description, &stat.Connections); err != nil {
			return nil, fmt.Errorf("scan feature stat: %w", err)
		}
		insights.TopFeatures = append(insights.TopFeatures, stat)
	}
	if err := topRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature stats: %w", err)
	}

	filesQuery := fmt.Sprintf(`
		SELECT file, MAX(language), COUNT(*)
		FROM %s
		WHERE repository_id = $1
		GROUP BY file
		ORDER BY COUNT(*) DESC
		LIMIT 10
	`, s.tables.Features)

	fileRows, err := db.Query(ctx, filesQuery, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("aggregate file stats: %w", err)
	}
	defer fileRows.Close()
	for fileRows.Next() {
		var stat models.FileStat
		if err := fileRows.Scan(&stat.Filename, &stat.Language, &stat.FeatureCount); err != nil {
			return nil, fmt.Errorf("scan file stat: %w", err)
		}
		insights.FileStats = append(insights.FileStats, stat)
	}
	if err := fileRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file stats: %w", err)
	}

	return insights, nil
}

// collectFeatures drains rows in featureColumns order.
func collectFeatures(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.GraphFeature, error) {
	var features []models.GraphFeature
	for rows.Next() {
		var f models.GraphFeature
		err := rows.Scan(
			&f.ID,
			&f.RepositoryID,
			&f.File,
			&f.ChunkID,
			&f.Language,
			&f.Feature,
			&f.Description,
			&f.Code,
			&f.Functions,
			&f.Classes,
			&f.APIs,
			&f.Dependencies,
			&f.Inputs,
			&f.Outputs,
			&f.SideEffects,
			&f.Requirements,
			&f.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}
	return features, nil
}
