package pipeline

import (
	"context"
	"fmt"
	"strings"

	"brewlake/internal/domain"
)

// Free-text columns normalized by the silver stage. Coercing these to text
// with null → "" keeps partitions with and without nulls schema-stable.
var silverTextColumns = []string{
	"name", "brewery_type", "address_1", "city", "state_province", "country",
}

// RunSilver reads the raw dataset, normalizes identifier and text fields,
// and replaces today's cleaned partition (partitioned by ingestion date and
// country). Returns the number of rows written.
func (s *Service) RunSilver(ctx context.Context, rc domain.RunContext) (int64, error) {
	logger := s.logger.With("stage", domain.StageSilver, "run_id", rc.RunID)

	ds, err := s.store.ReadAll(ctx, s.cfg.BronzeDir())
	if err != nil {
		logger.Error("raw dataset not ready, aborting silver", "error", err)
		return 0, fmt.Errorf("read bronze: %w", err)
	}

	// Restrict the full read to this run's ingestion date so a rerun
	// replaces exactly one partition instead of re-appending older ones.
	ds, err = ds.Filter("date_request", rc.IngestionDate)
	if err != nil {
		return 0, fmt.Errorf("filter bronze by date: %w", err)
	}
	if ds.NumRows() == 0 {
		err := domain.ErrStorageNotFound("no raw rows for %s", rc.IngestionDate)
		logger.Error("raw partition empty, aborting silver", "error", err)
		return 0, err
	}

	normalize(ds)

	partition := partitionPath(s.cfg.SilverDir(), rc.IngestionDate)
	if res := s.store.DeletePartition(partition); res == domain.DeleteFailed {
		return 0, fmt.Errorf("partition %s not cleared (%s), refusing to write alongside stale files", partition, res)
	}
	if err := s.store.Write(ctx, s.cfg.SilverDir(), ds, "date_request", "country"); err != nil {
		return 0, fmt.Errorf("write silver: %w", err)
	}

	logger.Info("silver complete", "rows", ds.NumRows())
	return int64(ds.NumRows()), nil
}

// normalize coerces the identifier to trimmed text and the fixed free-text
// columns to text with nulls replaced by the empty string. Columns missing
// from the feed are added as empty text so downstream schemas stay uniform.
func normalize(ds *domain.Dataset) {
	if i := ds.ColumnIndex("id"); i >= 0 {
		ds.Columns[i].Type = domain.TypeVarchar
		for _, row := range ds.Rows {
			row[i] = strings.TrimSpace(domain.CoerceString(row[i]))
		}
	}

	for _, name := range silverTextColumns {
		i := ds.ColumnIndex(name)
		if i < 0 {
			ds.AddColumn(name, domain.TypeVarchar, "")
			continue
		}
		ds.Columns[i].Type = domain.TypeVarchar
		for _, row := range ds.Rows {
			row[i] = domain.CoerceString(row[i])
		}
	}
}
