package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewlake/internal/domain"
)

func TestRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "bronze", "silver", "gold", "schedule", "history"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRunContextForDate_Default(t *testing.T) {
	rc, err := runContextForDate("")
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format(domain.IngestionDateFormat), rc.IngestionDate)
	assert.NotEmpty(t, rc.RunID)
}

func TestRunContextForDate_Explicit(t *testing.T) {
	rc, err := runContextForDate("2024_06_15")
	require.NoError(t, err)
	assert.Equal(t, "2024_06_15", rc.IngestionDate)
}

func TestRunContextForDate_RejectsBadFormat(t *testing.T) {
	_, err := runContextForDate("2024-06-15")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY_MM_DD")
}

func TestPrintRuns_Format(t *testing.T) {
	errMsg := "one or more stages failed"
	runs := []domain.PipelineRun{
		{ID: "run-a", IngestionDate: "2024_01_02", Status: domain.StatusSuccess,
			StartedAt: time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC)},
		{ID: "run-b", IngestionDate: "2024_01_01", Status: domain.StatusFailed, Error: &errMsg,
			StartedAt: time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)},
	}

	var sb strings.Builder
	printRuns(&sb, runs)
	out := sb.String()

	assert.Contains(t, out, "RUN ID")
	assert.Contains(t, out, "run-a")
	assert.Contains(t, out, "2024_01_01")
	assert.Contains(t, out, errMsg)
}

func TestPrintStageRuns_MissingRowCount(t *testing.T) {
	rows := int64(12)
	stageRuns := []domain.StageRun{
		{Stage: domain.StageBronze, Status: domain.StatusSuccess, RowsWritten: &rows},
		{Stage: domain.StageSilver, Status: domain.StatusFailed},
	}

	var sb strings.Builder
	printStageRuns(&sb, stageRuns)
	out := sb.String()

	assert.Contains(t, out, "12")
	assert.Contains(t, out, "-")
}
