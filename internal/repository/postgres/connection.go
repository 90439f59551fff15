package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codescrybe/internal/domain/repositories"
)

// RepositoryConfig holds the shared dependencies of the store
// implementations.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names (dev_, test_,
// prod_).
type TableNames struct {
	Repositories string
	Messages     string
	Features     string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Repositories: fmt.Sprintf("%srepositories", prefix),
		Messages:     fmt.Sprintf("%smessages", prefix),
		Features:     fmt.Sprintf("%sfeatures", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool and verifies the
// connection.
//
// Dynamic table prefixes interpolated with fmt.Sprintf are safe with
// prepared statements: the SQL string is fixed before it reaches the
// server, so each environment simply gets its own statement set.
//
// Port 6543 is a transaction-pooling PgBouncer (Supabase's pooler),
// which cannot hold prepared statements across calls. When detected,
// the pool switches to QueryExecModeCacheDescribe: still the extended
// protocol (needed to encode map[string]any into JSONB), but caching
// only statement descriptions. An explicit default_query_exec_mode in
// the connection string takes precedence.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction from the context when one is
// present, the pool otherwise, so stores join ambient transactions
// automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
