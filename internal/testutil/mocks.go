// Package testutil provides shared mock implementations of domain
// interfaces for use in tests across the codebase.
package testutil

import (
	"context"

	"brewlake/internal/domain"
)

// MockFetcher implements domain.Fetcher for testing.
type MockFetcher struct {
	FetchAllFn func(ctx context.Context) ([]domain.Record, error)
	Calls      int
}

// FetchAll implements the interface method for testing.
func (m *MockFetcher) FetchAll(ctx context.Context) ([]domain.Record, error) {
	m.Calls++
	if m.FetchAllFn != nil {
		return m.FetchAllFn(ctx)
	}
	return nil, nil
}

// MockStore implements domain.PartitionStore for testing. Unset functions
// panic, so tests fail loudly on unexpected calls.
type MockStore struct {
	ReadAllFn         func(ctx context.Context, datasetPath string, columns ...string) (*domain.Dataset, error)
	WriteFn           func(ctx context.Context, datasetPath string, ds *domain.Dataset, partitionKeys ...string) error
	CountRowsFn       func(ctx context.Context, partitionPath string) (int64, error)
	DeletePartitionFn func(partitionPath string) domain.DeleteResult

	Writes  []string // dataset paths written, in order
	Deletes []string // partition paths deleted, in order
}

// ReadAll implements the interface method for testing.
func (m *MockStore) ReadAll(ctx context.Context, datasetPath string, columns ...string) (*domain.Dataset, error) {
	if m.ReadAllFn == nil {
		panic("unexpected call to MockStore.ReadAll")
	}
	return m.ReadAllFn(ctx, datasetPath, columns...)
}

// Write implements the interface method for testing.
func (m *MockStore) Write(ctx context.Context, datasetPath string, ds *domain.Dataset, partitionKeys ...string) error {
	m.Writes = append(m.Writes, datasetPath)
	if m.WriteFn != nil {
		return m.WriteFn(ctx, datasetPath, ds, partitionKeys...)
	}
	return nil
}

// CountRows implements the interface method for testing.
func (m *MockStore) CountRows(ctx context.Context, partitionPath string) (int64, error) {
	if m.CountRowsFn != nil {
		return m.CountRowsFn(ctx, partitionPath)
	}
	return 0, domain.ErrStorageNotFound("no data at %s", partitionPath)
}

// DeletePartition implements the interface method for testing.
func (m *MockStore) DeletePartition(partitionPath string) domain.DeleteResult {
	m.Deletes = append(m.Deletes, partitionPath)
	if m.DeletePartitionFn != nil {
		return m.DeletePartitionFn(partitionPath)
	}
	return domain.DeleteNotFound
}

// Compile-time interface checks.
var (
	_ domain.Fetcher        = (*MockFetcher)(nil)
	_ domain.PartitionStore = (*MockStore)(nil)
)
