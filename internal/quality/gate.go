// Package quality implements the row-count quality gate that keeps a stage
// from overwriting good data with a suspiciously smaller dataset.
package quality

import (
	"context"
	"errors"
	"log/slog"

	"brewlake/internal/domain"
)

// RowCounter is the slice of the partition store the gate needs.
type RowCounter interface {
	CountRows(ctx context.Context, partitionPath string) (int64, error)
}

// Gate decides whether a candidate dataset may replace an existing partition.
type Gate struct {
	counter RowCounter
	logger  *slog.Logger
}

// NewGate creates a quality gate reading existing row counts through counter.
func NewGate(counter RowCounter, logger *slog.Logger) *Gate {
	return &Gate{counter: counter, logger: logger}
}

// Passes reports whether candidateRows may replace the partition at
// existingPath given the tolerated fractional shrink.
//
// The gate is a safety net, not a hard dependency: a missing partition
// passes (first run), an empty partition passes, and an unreadable
// partition passes with a warning (indeterminate). Only a measurable
// row-count drop beyond shrinkThreshold blocks.
func (g *Gate) Passes(ctx context.Context, candidateRows int64, existingPath string, shrinkThreshold float64) bool {
	existing, err := g.counter.CountRows(ctx, existingPath)
	if err != nil {
		var nf *domain.StorageNotFoundError
		if errors.As(err, &nf) {
			g.logger.Info("no existing partition, gate passes", "path", existingPath)
			return true
		}
		g.logger.Warn("existing partition unreadable, gate passes as indeterminate",
			"path", existingPath, "error", err)
		return true
	}

	if existing == 0 {
		g.logger.Info("existing partition is empty, gate passes", "path", existingPath)
		return true
	}
	if candidateRows >= existing {
		return true
	}

	shrink := float64(existing-candidateRows) / float64(existing)
	if shrink <= shrinkThreshold {
		g.logger.Info("row count shrank within threshold",
			"path", existingPath, "existing", existing, "candidate", candidateRows,
			"shrink_pct", shrink*100, "threshold_pct", shrinkThreshold*100)
		return true
	}

	g.logger.Error("quality gate blocked partition replace",
		"blocked", true,
		"path", existingPath, "existing", existing, "candidate", candidateRows,
		"shrink_pct", shrink*100, "threshold_pct", shrinkThreshold*100)
	return false
}
