package store

import (
	"os"

	"brewlake/internal/domain"
)

// DeletePartition recursively removes one partition's subtree.
//
// Two guards protect against deleting directories that aren't
// pipeline-managed data: an absent path is a no-op, and so is a directory
// holding zero parquet files anywhere beneath it. A failed removal is
// reported as DeleteFailed rather than an error; callers decide whether
// to proceed or abort (the stages abort before writing).
func (s *Store) DeletePartition(partitionPath string) domain.DeleteResult {
	if _, err := os.Stat(partitionPath); os.IsNotExist(err) {
		s.logger.Info("partition not found, nothing to delete", "path", partitionPath)
		return domain.DeleteNotFound
	}

	if !hasParquetFiles(partitionPath) {
		s.logger.Warn("no parquet files under path, skipping deletion", "path", partitionPath)
		return domain.DeleteNoDataFiles
	}

	if err := os.RemoveAll(partitionPath); err != nil {
		s.logger.Error("partition removal failed", "path", partitionPath, "error", err)
		return domain.DeleteFailed
	}

	s.logger.Info("partition deleted", "path", partitionPath)
	return domain.DeleteCleared
}
