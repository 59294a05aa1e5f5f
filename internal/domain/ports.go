package domain

import "context"

// DeleteResult is the explicit outcome of a partition deletion, so callers
// can decide whether to escalate instead of silently continuing.
type DeleteResult int

// Partition deletion outcomes.
const (
	DeleteCleared     DeleteResult = iota // subtree removed
	DeleteNotFound                        // path absent, nothing to do
	DeleteNoDataFiles                     // path holds no parquet files, left untouched
	DeleteFailed                          // removal attempted and failed
)

// String returns the lowercase name of the result.
func (r DeleteResult) String() string {
	switch r {
	case DeleteCleared:
		return "cleared"
	case DeleteNotFound:
		return "not-found"
	case DeleteNoDataFiles:
		return "no-data-files"
	case DeleteFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PartitionStore abstracts a partitioned table dataset on durable storage.
type PartitionStore interface {
	// ReadAll reads every partition under datasetPath, optionally projecting
	// only the given columns. Returns StorageNotFoundError when no committed
	// data exists at the path.
	ReadAll(ctx context.Context, datasetPath string, columns ...string) (*Dataset, error)

	// Write materializes ds into the partitioned layout under datasetPath,
	// one physical partition per distinct partition-key combination.
	Write(ctx context.Context, datasetPath string, ds *Dataset, partitionKeys ...string) error

	// CountRows returns the row count of the partition without reading data
	// columns. Returns StorageNotFoundError when the partition is absent.
	CountRows(ctx context.Context, partitionPath string) (int64, error)

	// DeletePartition removes one partition's subtree, guarded against
	// deleting directories that hold no committed table files.
	DeletePartition(partitionPath string) DeleteResult
}

// Fetcher pulls the full collection from the upstream API.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]Record, error)
}

// RunRepository persists pipeline run history in the metastore.
type RunRepository interface {
	InsertRun(ctx context.Context, run *PipelineRun) error
	FinishRun(ctx context.Context, runID, status string, errMsg *string) error
	InsertStageRun(ctx context.Context, sr *StageRun) error
	FinishStageRun(ctx context.Context, stageRunID int64, status string, rowsWritten *int64, errMsg *string) error
	ListRecentRuns(ctx context.Context, limit int) ([]PipelineRun, error)
	ListStageRunsByRun(ctx context.Context, runID string) ([]StageRun, error)
}
