package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codescrybe/internal/domain/models"
	"codescrybe/internal/domain/repositories"
	"codescrybe/internal/service/pipeline/chunker"
)

const totalSteps = 6

// Pipeline runs the six-step analysis for a repository: clone, detect
// language, parse into chunks, extract features, store, clean up.
// After every step it publishes a status snapshot, which the frontend
// polls while the run is in flight.
type Pipeline struct {
	repos     repositories.RepositoryStore
	features  repositories.FeatureStore
	txManager repositories.TransactionManager
	cloner    *Cloner
	parser    *chunker.Parser
	extractor *Extractor
	logger    *slog.Logger
}

// New creates an analysis pipeline.
func New(
	repos repositories.RepositoryStore,
	features repositories.FeatureStore,
	txManager repositories.TransactionManager,
	cloner *Cloner,
	parser *chunker.Parser,
	extractor *Extractor,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		repos:     repos,
		features:  features,
		txManager: txManager,
		cloner:    cloner,
		parser:    parser,
		extractor: extractor,
		logger:    logger,
	}
}

// Run executes the full analysis for the repository. Failures move
// the repository to the error status with the failure message; the
// checkout is cleaned up either way.
func (p *Pipeline) Run(ctx context.Context, repo *models.Repository) error {
	p.logger.Info("starting analysis pipeline", "repository_id", repo.ID, "url", repo.URL)

	tracker := NewProgressTracker(repo.ID, p.logger)
	status := &models.StatusData{
		CurrentStep:      "Initializing",
		TotalSteps:       totalSteps,
		CurrentOperation: "Preparing to clone repository",
		StartTime:        tracker.StartTime(),
		DetailedProgress: map[string]any{
			"repo_url":  repo.URL,
			"repo_name": RepoBaseName(repo.URL),
		},
	}
	p.publish(ctx, repo.ID, models.StatusPending, status)

	checkout, err := p.run(ctx, repo, tracker, status)

	if checkout != "" {
		p.cloner.Cleanup(checkout)
	}

	if err != nil {
		p.fail(ctx, repo, status, err)
		return err
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, repo *models.Repository, tracker *ProgressTracker, status *models.StatusData) (checkout string, err error) {
	// Step 1: clone.
	tracker.StartStep("cloning")
	status.CurrentStep = "Cloning Repository"
	status.CurrentOperation = fmt.Sprintf("Cloning %s", repo.URL)
	status.ProgressPercentage = tracker.Percentage(0, totalSteps, 0.1)
	p.publish(ctx, repo.ID, models.StatusCloning, status)

	checkout, err = p.cloner.Clone(ctx, repo.URL)
	if err != nil {
		return "", fmt.Errorf("clone repository: %w", err)
	}

	status.CompletedSteps = 1
	status.CurrentOperation = "Repository cloned successfully"
	status.ProgressPercentage = tracker.Percentage(1, totalSteps, 0)
	status.ETASeconds = tracker.ETA(1, totalSteps)
	p.publish(ctx, repo.ID, models.StatusCloning, status)

	// Step 2: detect primary language.
	tracker.StartStep("language_detection")
	status.CurrentStep = "Analyzing Repository"
	status.CurrentOperation = "Detecting primary programming language"
	status.ProgressPercentage = tracker.Percentage(1, totalSteps, 0.2)
	p.publish(ctx, repo.ID, models.StatusParsing, status)

	language := DetectPrimaryLanguage(checkout, p.parser.Registry())
	p.logger.Info("detected primary language", "repository_id", repo.ID, "language", language)
	status.DetailedProgress["primary_language"] = language

	// Step 3: parse into chunks.
	tracker.StartStep("parsing")
	status.CurrentOperation = "Parsing code files and creating chunks"
	status.ProgressPercentage = tracker.Percentage(1, totalSteps, 0.5)
	p.publish(ctx, repo.ID, models.StatusParsing, status)

	chunks, err := p.parser.ParseFiles(checkout)
	if err != nil {
		return checkout, fmt.Errorf("parse repository: %w", err)
	}
	if len(chunks) == 0 {
		return checkout, fmt.Errorf("no supported code files found to parse")
	}

	files := make(map[string]int)
	for _, c := range chunks {
		files[c.File]++
	}

	status.CompletedSteps = 2
	status.FilesDiscovered = len(files)
	status.CurrentOperation = fmt.Sprintf("Parsed %d chunks from %d files", len(chunks), len(files))
	status.ProgressPercentage = tracker.Percentage(2, totalSteps, 0)
	status.ETASeconds = tracker.ETA(2, totalSteps)
	status.DetailedProgress["total_files"] = len(files)
	status.DetailedProgress["total_chunks"] = len(chunks)
	p.publish(ctx, repo.ID, models.StatusParsing, status)

	// Step 4: feature extraction.
	tracker.StartStep("feature_extraction")
	status.CurrentStep = "Extracting Features"
	status.CurrentOperation = "Initializing AI feature extraction"
	status.ProgressPercentage = tracker.Percentage(2, totalSteps, 0.1)
	p.publish(ctx, repo.ID, models.StatusExtractingFeatures, status)

	features, warnings := p.extractor.Extract(ctx, chunks, func(done, total int) {
		// Batches cover 80% of this step; the remainder is assembly.
		status.CurrentOperation = fmt.Sprintf("Processing batch %d/%d", done, total)
		status.ProgressPercentage = tracker.Percentage(2, totalSteps, 0.8*float64(done)/float64(total))
		p.publish(ctx, repo.ID, models.StatusExtractingFeatures, status)
	})
	status.Warnings = append(status.Warnings, warnings...)

	if len(features) == 0 {
		p.logger.Warn("no features extracted, using basic parsing results", "repository_id", repo.ID)
		status.Warnings = append(status.Warnings, "AI feature extraction failed, using basic parsing")
		features = BasicFeatures(chunks)
	}

	status.CompletedSteps = 3
	status.CurrentOperation = fmt.Sprintf("Extracted %d features", len(features))
	status.ProgressPercentage = tracker.Percentage(3, totalSteps, 0)
	status.ETASeconds = tracker.ETA(3, totalSteps)
	p.publish(ctx, repo.ID, models.StatusExtractingFeatures, status)

	// Step 5: store features and repository metadata atomically.
	tracker.StartStep("storing_data")
	status.CurrentStep = "Storing Data"
	status.CurrentOperation = "Saving features to database"
	status.ProgressPercentage = tracker.Percentage(3, totalSteps, 0.1)
	p.publish(ctx, repo.ID, models.StatusStoringData, status)

	now := time.Now()
	repo.Language = language
	repo.FilesAnalyzed = len(files)
	repo.TotalChunks = len(chunks)
	repo.LastAnalyzed = &now
	repo.Status = models.StatusStoringData
	repo.ErrorMessage = nil

	err = p.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := p.features.ReplaceAll(txCtx, repo.ID, features); err != nil {
			return err
		}
		return p.repos.UpdateAnalysis(txCtx, repo)
	})
	if err != nil {
		return checkout, fmt.Errorf("store analysis results: %w", err)
	}

	status.CompletedSteps = 4
	status.CurrentOperation = "Data stored successfully"
	status.ProgressPercentage = tracker.Percentage(4, totalSteps, 0)
	status.ETASeconds = tracker.ETA(4, totalSteps)
	p.publish(ctx, repo.ID, models.StatusStoringData, status)

	// Step 6: cleanup.
	tracker.StartStep("cleanup")
	status.CurrentStep = "Cleaning Up"
	status.CurrentOperation = "Removing cloned repository"
	status.ProgressPercentage = tracker.Percentage(4, totalSteps, 0.1)
	p.publish(ctx, repo.ID, models.StatusCleaningUp, status)

	if !p.cloner.Cleanup(checkout) {
		status.Warnings = append(status.Warnings, "checkout may not have been cleaned up")
	}
	checkout = ""

	status.CompletedSteps = 5
	status.CurrentOperation = "Cleanup completed"
	status.ProgressPercentage = tracker.Percentage(5, totalSteps, 0)

	// Completion.
	totalTime := time.Since(status.StartTime).Seconds()
	zero := 0
	status.CurrentStep = "Completed"
	status.CompletedSteps = totalSteps
	status.CurrentOperation = "Repository analysis completed successfully"
	status.ProgressPercentage = 100.0
	status.ETASeconds = &zero
	status.DetailedProgress["total_processing_time_seconds"] = totalTime
	p.publish(ctx, repo.ID, models.StatusAnalyzed, status)

	p.logger.Info("pipeline completed",
		"repository_id", repo.ID,
		"files", len(files),
		"chunks", len(chunks),
		"features", len(features),
		"seconds", totalTime,
	)
	return "", nil
}

// publish writes the repository status and the progress snapshot.
// Status write failures are logged, not fatal: losing one snapshot
// must not abort an analysis.
func (p *Pipeline) publish(ctx context.Context, repositoryID string, s models.RepositoryStatus, status *models.StatusData) {
	status.LastUpdate = time.Now()
	if err := p.repos.UpdateStatus(ctx, repositoryID, s, nil); err != nil {
		p.logger.Error("failed to update repository status", "repository_id", repositoryID, "error", err)
	}
	if err := p.repos.SetStatusData(ctx, repositoryID, status); err != nil {
		p.logger.Error("failed to write status snapshot", "repository_id", repositoryID, "error", err)
	}
}

// fail records a pipeline failure on the repository.
func (p *Pipeline) fail(ctx context.Context, repo *models.Repository, status *models.StatusData, cause error) {
	p.logger.Error("pipeline failed", "repository_id", repo.ID, "error", cause)

	msg := cause.Error()
	status.CurrentStep = "Error"
	status.CurrentOperation = fmt.Sprintf("Pipeline failed: %s", msg)
	status.ProgressPercentage = 0.0
	status.LastUpdate = time.Now()
	status.DetailedProgress["error"] = msg

	if err := p.repos.UpdateStatus(ctx, repo.ID, models.StatusError, &msg); err != nil {
		p.logger.Error("failed to record error status", "repository_id", repo.ID, "error", err)
	}
	if err := p.repos.SetStatusData(ctx, repo.ID, status); err != nil {
		p.logger.Error("failed to write error snapshot", "repository_id", repo.ID, "error", err)
	}
}
