package pipeline

import (
	"log/slog"
	"sync"
	"time"
)

// ProgressTracker computes the progress metrics published in the
// status snapshot: overall percentage and a naive ETA assuming all
// steps take roughly the average time of the ones already done.
type ProgressTracker struct {
	repositoryID string
	startTime    time.Time
	logger       *slog.Logger

	mu         sync.Mutex
	stepStarts map[string]time.Time
}

// NewProgressTracker starts tracking a pipeline run.
func NewProgressTracker(repositoryID string, logger *slog.Logger) *ProgressTracker {
	return &ProgressTracker{
		repositoryID: repositoryID,
		startTime:    time.Now(),
		logger:       logger,
		stepStarts:   make(map[string]time.Time),
	}
}

// StartTime returns when the run began.
func (t *ProgressTracker) StartTime() time.Time {
	return t.startTime
}

// StartStep marks the start of a named step.
func (t *ProgressTracker) StartStep(name string) {
	t.mu.Lock()
	t.stepStarts[name] = time.Now()
	t.mu.Unlock()
	t.logger.Info("starting pipeline step", "repository_id", t.repositoryID, "step", name)
}

// ETA estimates remaining seconds from the average time per completed
// step. Nil until at least one step has completed.
func (t *ProgressTracker) ETA(completedSteps, totalSteps int) *int {
	if completedSteps == 0 {
		return nil
	}

	elapsed := time.Since(t.startTime).Seconds()
	avgPerStep := elapsed / float64(completedSteps)
	remaining := int(avgPerStep * float64(totalSteps-completedSteps))
	return &remaining
}

// Percentage computes overall progress. stepProgress is the fraction
// (0..1) of the current step already done; it contributes its share
// of one step's worth of progress. Clamped to 100.
func (t *ProgressTracker) Percentage(completedSteps, totalSteps int, stepProgress float64) float64 {
	if totalSteps == 0 {
		return 0.0
	}

	base := float64(completedSteps) / float64(totalSteps) * 100
	step := stepProgress / float64(totalSteps) * 100
	if base+step > 100.0 {
		return 100.0
	}
	return base + step
}
