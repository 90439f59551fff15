package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"codescrybe/internal/config"
	"codescrybe/internal/domain/models"
	"codescrybe/internal/repository/postgres"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed the demo repository")
	clearData := flag.Bool("clear-data", false, "Clear all repositories, messages, and features (keep schema)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("🌱 Database setup (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		log.Println("🧹 Clearing repositories, messages, and features...")
		if err := clearAllData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared")
		return
	}

	log.Println("📝 Seeding demo repository...")
	if err := seedDemoRepository(ctx, pool, tables, logger); err != nil {
		log.Fatalf("Failed to seed demo repository: %v", err)
	}
	log.Println("🎉 Seeding complete!")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\""); err != nil {
		return err
	}

	createRepositories := `
		CREATE TABLE IF NOT EXISTS ` + tables.Repositories + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			url VARCHAR(500) NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'pending',
			message_count INTEGER NOT NULL DEFAULT 0,
			stars INTEGER NOT NULL DEFAULT 0,
			last_analyzed TIMESTAMPTZ,
			files_analyzed INTEGER NOT NULL DEFAULT 0,
			total_chunks INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			status_data JSONB,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createRepositories); err != nil {
		return err
	}

	createMessages := `
		CREATE TABLE IF NOT EXISTS ` + tables.Messages + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			repository_id UUID NOT NULL REFERENCES ` + tables.Repositories + `(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB,
			timestamp TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createMessages); err != nil {
		return err
	}

	createFeatures := `
		CREATE TABLE IF NOT EXISTS ` + tables.Features + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			repository_id UUID NOT NULL REFERENCES ` + tables.Repositories + `(id) ON DELETE CASCADE,
			file TEXT NOT NULL,
			chunk_id INTEGER NOT NULL,
			language TEXT NOT NULL DEFAULT '',
			feature TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			code TEXT NOT NULL DEFAULT '',
			functions TEXT[] NOT NULL DEFAULT '{}',
			classes TEXT[] NOT NULL DEFAULT '{}',
			apis TEXT[] NOT NULL DEFAULT '{}',
			dependencies TEXT[] NOT NULL DEFAULT '{}',
			inputs TEXT[] NOT NULL DEFAULT '{}',
			outputs TEXT[] NOT NULL DEFAULT '{}',
			side_effects TEXT[] NOT NULL DEFAULT '{}',
			requirements TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createFeatures); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `messages_repository_timestamp ON ` + tables.Messages + `(repository_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `features_repository_id ON ` + tables.Features + `(repository_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `features_repository_file ON ` + tables.Features + `(repository_id, file)`,
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Features,
		tables.Messages,
		tables.Repositories,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}
	return nil
}

// clearAllData removes every repository; messages and features cascade.
func clearAllData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	_, err := pool.Exec(ctx, "DELETE FROM "+tables.Repositories)
	return err
}

// seedDemoRepository inserts an already-analyzed repository with a few
// features and a welcome exchange, so a fresh dev environment has
// something to chat with before the first real analysis.
func seedDemoRepository(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, logger *slog.Logger) error {
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	repoStore := postgres.NewRepositoryStore(repoConfig)
	messageStore := postgres.NewMessageStore(repoConfig)
	featureStore := postgres.NewFeatureStore(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	now := time.Now()
	repo := &models.Repository{
		Name:        "demo-calculator",
		Description: "Seeded demo repository with a tiny C calculator",
		Language:    "C",
		URL:         "https://github.com/codescrybe/demo-calculator",
		Status:      models.StatusAnalyzed,
	}
	if err := repoStore.Create(ctx, repo); err != nil {
		log.Printf("Demo repository already present, skipping: %v", err)
		return nil
	}

	repo.FilesAnalyzed = 1
	repo.TotalChunks = 3
	repo.LastAnalyzed = &now
	if err := repoStore.UpdateAnalysis(ctx, repo); err != nil {
		return err
	}

	features := []models.GraphFeature{
		{
			File: "calc.c", ChunkID: 0, Language: "C",
			Feature:      "Calculator globals",
			Description:  "Includes and shared state for the calculator",
			Code:         "#include <stdio.h>\n#include <stdlib.h>\n\nstatic double accumulator;",
			Dependencies: []string{"stdio.h", "stdlib.h"},
		},
		{
			File: "calc.c", ChunkID: 1, Language: "C",
			Feature:     "Arithmetic operations",
			Description: "Add and subtract against the running accumulator",
			Code:        "double add(double x) { return accumulator += x; }\ndouble sub(double x) { return accumulator -= x; }",
			Functions:   []string{"add", "sub"},
			Inputs:      []string{"operand"},
			Outputs:     []string{"accumulator value"},
			SideEffects: []string{"mutates accumulator"},
		},
		{
			File: "calc.c", ChunkID: 2, Language: "C",
			Feature:     "REPL loop",
			Description: "Reads operations from stdin and prints results",
			Code:        "int main(void) {\n    char op;\n    double v;\n    while (scanf(\" %c %lf\", &op, &v) == 2) {\n        printf(\"%f\\n\", op == '+' ? add(v) : sub(v));\n    }\n    return 0;\n}",
			Functions:   []string{"main"},
			APIs:        []string{"scanf", "printf"},
		},
	}
	err := txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return featureStore.ReplaceAll(txCtx, repo.ID, features)
	})
	if err != nil {
		return err
	}

	messages := []*models.ChatMessage{
		{
			RepositoryID: repo.ID,
			Role:         models.RoleUser,
			Content:      "What does this repository do?",
		},
		{
			RepositoryID: repo.ID,
			Role:         models.RoleAssistant,
			Content:      "💡 **Analysis Results**\n\nThis is a tiny accumulator-based calculator written in C. The `add` and `sub` functions in **calc.c** mutate a shared accumulator, and `main` runs a read-eval-print loop over stdin.",
		},
	}
	for _, msg := range messages {
		if err := messageStore.Create(ctx, msg); err != nil {
			return err
		}
	}
	if err := repoStore.IncrementMessageCount(ctx, repo.ID, len(messages)); err != nil {
		return err
	}

	log.Printf("✅ Seeded %s (ID: %s, features: %d)", repo.Name, repo.ID, len(features))
	return nil
}
