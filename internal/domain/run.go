package domain

import (
	"time"

	"github.com/google/uuid"
)

// IngestionDateFormat is the layout of the date stamped onto every record
// produced by one pipeline run (partition value of date_request).
const IngestionDateFormat = "2006_01_02"

// RunContext carries the per-invocation values shared by all three stages.
// It is computed once at process start and passed into every stage call,
// so one run's bronze, silver, and gold outputs correlate by date and
// tests can inject arbitrary dates.
type RunContext struct {
	RunID         string
	IngestionDate string
	StartedAt     time.Time
}

// NewRunContext derives a run context from wall-clock time.
func NewRunContext(now time.Time) RunContext {
	return RunContext{
		RunID:         uuid.New().String(),
		IngestionDate: now.Format(IngestionDateFormat),
		StartedAt:     now,
	}
}

// Stage names, in execution order.
const (
	StageBronze = "bronze"
	StageSilver = "silver"
	StageGold   = "gold"
)

// Run and stage statuses recorded in the metastore.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusBlocked = "blocked" // quality gate refused the partition replace
)

// PipelineRun is one recorded invocation of the full pipeline.
type PipelineRun struct {
	ID            string
	IngestionDate string
	Status        string
	Error         *string
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// StageRun is one recorded stage execution within a pipeline run.
type StageRun struct {
	ID          int64
	RunID       string
	Stage       string
	Status      string
	RowsWritten *int64
	Error       *string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// StageResult is the in-memory outcome of one stage within a run.
type StageResult struct {
	Stage       string
	Status      string
	RowsWritten int64
	Err         error
}

// RunSummary aggregates the outcomes of all stages of one invocation.
type RunSummary struct {
	RunContext RunContext
	Stages     []StageResult
}

// Failed returns the number of stages that did not succeed.
func (s RunSummary) Failed() int {
	n := 0
	for _, st := range s.Stages {
		if st.Status != StatusSuccess {
			n++
		}
	}
	return n
}
