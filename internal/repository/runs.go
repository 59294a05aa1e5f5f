// Package repository implements metastore persistence for pipeline runs.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"brewlake/internal/domain"
)

// RunRepo persists pipeline run history in the SQLite metastore.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// InsertRun records the start of a pipeline invocation.
func (r *RunRepo) InsertRun(ctx context.Context, run *domain.PipelineRun) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, ingestion_date, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.IngestionDate, domain.StatusRunning, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert pipeline run: %w", err)
	}
	return nil
}

// FinishRun records a pipeline invocation's final status.
func (r *RunRepo) FinishRun(ctx context.Context, runID, status string, errMsg *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pipeline_runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, errMsg, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("finish pipeline run: %w", err)
	}
	return nil
}

// InsertStageRun records the start of one stage and fills in sr.ID.
func (r *RunRepo) InsertStageRun(ctx context.Context, sr *domain.StageRun) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO stage_runs (run_id, stage, status, started_at) VALUES (?, ?, ?, ?)`,
		sr.RunID, sr.Stage, domain.StatusRunning, sr.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert stage run: %w", err)
	}
	sr.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("stage run id: %w", err)
	}
	return nil
}

// FinishStageRun records a stage's final status and row count.
func (r *RunRepo) FinishStageRun(ctx context.Context, stageRunID int64, status string, rowsWritten *int64, errMsg *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE stage_runs SET status = ?, rows_written = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, rowsWritten, errMsg, time.Now().UTC(), stageRunID)
	if err != nil {
		return fmt.Errorf("finish stage run: %w", err)
	}
	return nil
}

// ListRecentRuns returns the most recent pipeline runs, newest first.
func (r *RunRepo) ListRecentRuns(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ingestion_date, status, error, started_at, finished_at
		 FROM pipeline_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var runs []domain.PipelineRun
	for rows.Next() {
		var run domain.PipelineRun
		var errMsg sql.NullString
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.IngestionDate, &run.Status, &errMsg, &run.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan pipeline run: %w", err)
		}
		if errMsg.Valid {
			run.Error = &errMsg.String
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListStageRunsByRun returns the stage runs of one invocation in start order.
func (r *RunRepo) ListStageRunsByRun(ctx context.Context, runID string) ([]domain.StageRun, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_id, stage, status, rows_written, error, started_at, finished_at
		 FROM stage_runs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list stage runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var stageRuns []domain.StageRun
	for rows.Next() {
		var sr domain.StageRun
		var rowsWritten sql.NullInt64
		var errMsg sql.NullString
		var finished sql.NullTime
		if err := rows.Scan(&sr.ID, &sr.RunID, &sr.Stage, &sr.Status, &rowsWritten, &errMsg, &sr.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan stage run: %w", err)
		}
		if rowsWritten.Valid {
			n := rowsWritten.Int64
			sr.RowsWritten = &n
		}
		if errMsg.Valid {
			sr.Error = &errMsg.String
		}
		if finished.Valid {
			t := finished.Time
			sr.FinishedAt = &t
		}
		stageRuns = append(stageRuns, sr)
	}
	return stageRuns, rows.Err()
}

// Compile-time check that RunRepo implements domain.RunRepository.
var _ domain.RunRepository = (*RunRepo)(nil)
