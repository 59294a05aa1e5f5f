package pipeline

import (
	"context"
	"fmt"

	"brewlake/internal/domain"
)

// RunBronze fetches the full API feed, stamps the ingestion date, runs the
// quality gate against today's raw partition, and replaces it. Returns the
// number of rows written.
//
// A fetch failure, an empty feed, a gate block, or an uncleared stale
// partition each abort the stage with no partition mutation.
func (s *Service) RunBronze(ctx context.Context, rc domain.RunContext) (int64, error) {
	logger := s.logger.With("stage", domain.StageBronze, "run_id", rc.RunID)

	records, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		logger.Error("fetch failed, aborting bronze", "error", err)
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if len(records) == 0 {
		err := domain.ErrValidation("api returned no records")
		logger.Error("empty feed, aborting bronze", "error", err)
		return 0, err
	}

	ds := domain.FromRecords(records)
	ds.AddColumn("date_request", domain.TypeVarchar, rc.IngestionDate)

	partition := partitionPath(s.cfg.BronzeDir(), rc.IngestionDate)
	if !s.gate.Passes(ctx, int64(ds.NumRows()), partition, s.cfg.ShrinkThreshold) {
		return 0, domain.ErrQualityBlocked("bronze partition replace blocked for %s", rc.IngestionDate)
	}

	if res := s.store.DeletePartition(partition); res == domain.DeleteFailed {
		return 0, fmt.Errorf("partition %s not cleared (%s), refusing to write alongside stale files", partition, res)
	}
	if err := s.store.Write(ctx, s.cfg.BronzeDir(), ds, "date_request"); err != nil {
		return 0, fmt.Errorf("write bronze: %w", err)
	}

	logger.Info("bronze complete", "rows", ds.NumRows())
	return int64(ds.NumRows()), nil
}
