package pipeline

import (
	"context"
	"fmt"

	"brewlake/internal/domain"
)

// RunGold reads the cleaned dataset projected to the configured grouping
// dimensions, counts group membership for combinations actually present,
// and replaces today's aggregated partition. Returns the number of
// aggregate rows written.
func (s *Service) RunGold(ctx context.Context, rc domain.RunContext) (int64, error) {
	logger := s.logger.With("stage", domain.StageGold, "run_id", rc.RunID)
	dims := s.cfg.GroupDimensions

	// Column-projected read: only the dimensions plus the partition column.
	columns := append(append([]string{}, dims...), "date_request")
	ds, err := s.store.ReadAll(ctx, s.cfg.SilverDir(), columns...)
	if err != nil {
		logger.Error("cleaned dataset not ready, aborting gold", "error", err)
		return 0, fmt.Errorf("read silver: %w", err)
	}

	ds, err = ds.Filter("date_request", rc.IngestionDate)
	if err != nil {
		return 0, fmt.Errorf("filter silver by date: %w", err)
	}
	if ds.NumRows() == 0 {
		err := domain.ErrStorageNotFound("no cleaned rows for %s", rc.IngestionDate)
		logger.Error("cleaned partition empty, aborting gold", "error", err)
		return 0, err
	}

	agg, err := ds.GroupCount(dims, "count")
	if err != nil {
		return 0, fmt.Errorf("aggregate: %w", err)
	}
	agg.AddColumn("date_request", domain.TypeVarchar, rc.IngestionDate)

	partition := partitionPath(s.cfg.GoldDir(), rc.IngestionDate)
	if res := s.store.DeletePartition(partition); res == domain.DeleteFailed {
		return 0, fmt.Errorf("partition %s not cleared (%s), refusing to write alongside stale files", partition, res)
	}
	if err := s.store.Write(ctx, s.cfg.GoldDir(), agg, "date_request"); err != nil {
		return 0, fmt.Errorf("write gold: %w", err)
	}

	logger.Info("gold complete", "groups", agg.NumRows(), "dimensions", dims)
	return int64(agg.NumRows()), nil
}
