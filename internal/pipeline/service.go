// Package pipeline implements the bronze → silver → gold stage orchestration.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"brewlake/internal/config"
	"brewlake/internal/domain"
	"brewlake/internal/quality"
)

// Service runs the three pipeline stages against a partition store.
type Service struct {
	cfg     *config.Config
	store   domain.PartitionStore
	fetcher domain.Fetcher
	gate    *quality.Gate
	runs    domain.RunRepository // nil disables run-history recording
	logger  *slog.Logger
}

// NewService wires a pipeline service. runs may be nil; history recording
// is best-effort and never fails a stage.
func NewService(cfg *config.Config, store domain.PartitionStore, fetcher domain.Fetcher,
	gate *quality.Gate, runs domain.RunRepository, logger *slog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		store:   store,
		fetcher: fetcher,
		gate:    gate,
		runs:    runs,
		logger:  logger,
	}
}

func partitionPath(base, ingestionDate string) string {
	return filepath.Join(base, "date_request="+ingestionDate)
}

// Run executes bronze, silver, and gold in order, once. Stages are not
// chained on success: a failed stage logs and returns, and the next stage
// still runs (and will abort cleanly when its input is missing). Stage
// failures never crash the process.
func (s *Service) Run(ctx context.Context, rc domain.RunContext) domain.RunSummary {
	logger := s.logger.With("run_id", rc.RunID, "ingestion_date", rc.IngestionDate)
	logger.Info("pipeline run starting")

	s.recordRunStart(ctx, rc, logger)

	summary := domain.RunSummary{RunContext: rc}
	stages := []struct {
		name string
		fn   func(context.Context, domain.RunContext) (int64, error)
	}{
		{domain.StageBronze, s.RunBronze},
		{domain.StageSilver, s.RunSilver},
		{domain.StageGold, s.RunGold},
	}
	for _, stage := range stages {
		summary.Stages = append(summary.Stages, s.runStage(ctx, rc, stage.name, stage.fn, logger))
	}

	s.recordRunFinish(ctx, rc, summary, logger)

	logger.Info("pipeline run finished", "failed_stages", summary.Failed())
	return summary
}

func (s *Service) runStage(ctx context.Context, rc domain.RunContext, name string,
	fn func(context.Context, domain.RunContext) (int64, error), logger *slog.Logger) domain.StageResult {

	var stageRunID int64
	if s.runs != nil {
		sr := &domain.StageRun{RunID: rc.RunID, Stage: name, StartedAt: time.Now()}
		if err := s.runs.InsertStageRun(ctx, sr); err != nil {
			logger.Warn("failed to record stage start", "stage", name, "error", err)
		} else {
			stageRunID = sr.ID
		}
	}

	rows, err := fn(ctx, rc)

	status := domain.StatusSuccess
	if err != nil {
		status = domain.StatusFailed
		var blocked *domain.QualityBlockedError
		if errors.As(err, &blocked) {
			status = domain.StatusBlocked
		}
	}

	if s.runs != nil && stageRunID != 0 {
		var errMsg *string
		if err != nil {
			m := err.Error()
			errMsg = &m
		}
		var rowsPtr *int64
		if err == nil {
			rowsPtr = &rows
		}
		if ferr := s.runs.FinishStageRun(ctx, stageRunID, status, rowsPtr, errMsg); ferr != nil {
			logger.Warn("failed to record stage finish", "stage", name, "error", ferr)
		}
	}

	return domain.StageResult{Stage: name, Status: status, RowsWritten: rows, Err: err}
}

func (s *Service) recordRunStart(ctx context.Context, rc domain.RunContext, logger *slog.Logger) {
	if s.runs == nil {
		return
	}
	run := &domain.PipelineRun{ID: rc.RunID, IngestionDate: rc.IngestionDate, StartedAt: rc.StartedAt}
	if err := s.runs.InsertRun(ctx, run); err != nil {
		logger.Warn("failed to record run start", "error", err)
	}
}

func (s *Service) recordRunFinish(ctx context.Context, rc domain.RunContext, summary domain.RunSummary, logger *slog.Logger) {
	if s.runs == nil {
		return
	}
	status := domain.StatusSuccess
	var errMsg *string
	if n := summary.Failed(); n > 0 {
		status = domain.StatusFailed
		m := "one or more stages failed"
		errMsg = &m
	}
	if err := s.runs.FinishRun(ctx, rc.RunID, status, errMsg); err != nil {
		logger.Warn("failed to record run finish", "error", err)
	}
}
