package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewlake/internal/db"
	"brewlake/internal/domain"
)

func setupRunRepo(t *testing.T) *RunRepo {
	t.Helper()
	return NewRunRepo(db.OpenTestSQLite(t))
}

func newRun() *domain.PipelineRun {
	return &domain.PipelineRun{
		ID:            uuid.New().String(),
		IngestionDate: "2024_01_01",
		StartedAt:     time.Now(),
	}
}

func TestRunLifecycle(t *testing.T) {
	repo := setupRunRepo(t)
	ctx := context.Background()

	run := newRun()
	require.NoError(t, repo.InsertRun(ctx, run))

	runs, err := repo.ListRecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.StatusRunning, runs[0].Status)
	assert.Nil(t, runs[0].FinishedAt)

	errMsg := "one or more stages failed"
	require.NoError(t, repo.FinishRun(ctx, run.ID, domain.StatusFailed, &errMsg))

	runs, err = repo.ListRecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.StatusFailed, runs[0].Status)
	require.NotNil(t, runs[0].Error)
	assert.Equal(t, errMsg, *runs[0].Error)
	assert.NotNil(t, runs[0].FinishedAt)
}

func TestStageRunLifecycle(t *testing.T) {
	repo := setupRunRepo(t)
	ctx := context.Background()

	run := newRun()
	require.NoError(t, repo.InsertRun(ctx, run))

	for _, stage := range []string{domain.StageBronze, domain.StageSilver, domain.StageGold} {
		sr := &domain.StageRun{RunID: run.ID, Stage: stage, StartedAt: time.Now()}
		require.NoError(t, repo.InsertStageRun(ctx, sr))
		assert.Positive(t, sr.ID)

		rows := int64(42)
		require.NoError(t, repo.FinishStageRun(ctx, sr.ID, domain.StatusSuccess, &rows, nil))
	}

	stageRuns, err := repo.ListStageRunsByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, stageRuns, 3)
	assert.Equal(t, domain.StageBronze, stageRuns[0].Stage)
	assert.Equal(t, domain.StageGold, stageRuns[2].Stage)
	for _, sr := range stageRuns {
		assert.Equal(t, domain.StatusSuccess, sr.Status)
		require.NotNil(t, sr.RowsWritten)
		assert.Equal(t, int64(42), *sr.RowsWritten)
	}
}

func TestListRecentRuns_OrderAndLimit(t *testing.T) {
	repo := setupRunRepo(t)
	ctx := context.Background()

	var ids []string
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		run := newRun()
		run.StartedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.InsertRun(ctx, run))
		ids = append(ids, run.ID)
	}

	runs, err := repo.ListRecentRuns(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[4], runs[0].ID) // newest first
	assert.Equal(t, ids[2], runs[2].ID)
}
