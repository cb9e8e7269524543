package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"statbench/domain/core"
	"statbench/models"
	"statbench/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	defaultRunLimit = 50
	maxRunLimit     = 500
)

// runRepository implements ports.RunRepository. Queries are written with ?
// placeholders and rebound for the connected driver.
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// SaveRun inserts a run, assigning an ID and timestamp when missing
func (r *runRepository) SaveRun(ctx context.Context, run *models.AnalysisRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`INSERT INTO analysis_runs (
		id, kind, dataset_id, params, result, message, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		run.ID.String(), run.Kind, run.DatasetID, run.Params, run.Result, run.Message, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by its ID
func (r *runRepository) GetRun(ctx context.Context, id uuid.UUID) (*models.AnalysisRun, error) {
	query := r.db.Rebind(`SELECT id, kind, dataset_id, params, result, message, created_at
		FROM analysis_runs WHERE id = ?`)

	var run models.AnalysisRun
	if err := r.db.GetContext(ctx, &run, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("run", id.String())
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns runs matching filter, newest first
func (r *runRepository) ListRuns(ctx context.Context, filter models.RunFilter) ([]*models.AnalysisRun, error) {
	var where []string
	var args []interface{}
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.DatasetID != "" {
		where = append(where, "dataset_id = ?")
		args = append(args, filter.DatasetID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}
	limit = min(limit, maxRunLimit)

	query := `SELECT id, kind, dataset_id, params, result, message, created_at FROM analysis_runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	runs := []*models.AnalysisRun{}
	if err := r.db.SelectContext(ctx, &runs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes a run
func (r *runRepository) DeleteRun(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM analysis_runs WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return core.NewNotFoundError("run", id.String())
	}
	return nil
}
