package ports

import (
	"context"

	"statbench/models"

	"github.com/google/uuid"
)

// RunRepository defines the interface for analysis run history
type RunRepository interface {
	// SaveRun stores a completed analysis run
	SaveRun(ctx context.Context, run *models.AnalysisRun) error

	// GetRun retrieves a run by ID
	GetRun(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error)

	// ListRuns returns runs newest first
	ListRuns(ctx context.Context, filter models.RunFilter) ([]*models.AnalysisRun, error)

	// DeleteRun removes a run
	DeleteRun(ctx context.Context, id uuid.UUID) error
}
