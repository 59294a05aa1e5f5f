package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"brewlake/internal/domain"
)

// Scheduler runs the full pipeline on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	svc    *Service
	spec   string
	logger *slog.Logger
}

// NewScheduler creates a scheduler for the given cron spec.
func NewScheduler(svc *Service, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		svc:    svc,
		spec:   spec,
		logger: logger,
	}
}

// Start registers the pipeline job and starts the cron loop. Each firing
// derives a fresh run context from wall-clock time, so a long-lived
// scheduler crosses date boundaries correctly.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		rc := domain.NewRunContext(time.Now())
		summary := s.svc.Run(context.Background(), rc)
		if summary.Failed() > 0 {
			s.logger.Warn("scheduled run finished with failures",
				"run_id", rc.RunID, "failed_stages", summary.Failed())
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("pipeline scheduler started", "schedule", s.spec)
	return nil
}

// Stop gracefully stops the cron loop.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("pipeline scheduler stopped")
}
