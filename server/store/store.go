package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abhijit1892/ragdemo/core"
)

// ErrNotFound is returned when a run is not in the history.
var ErrNotFound = errors.New("not found")

// Run status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// RunRecord is one question/answer run as kept in the history.
type RunRecord struct {
	ID        string         `json:"id"`
	Question  string         `json:"question"`
	Answer    string         `json:"answer"`
	Passages  []core.Passage `json:"retrieved_passages"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	ElapsedMs int64          `json:"elapsed_ms"`
	Timestamp int64          `json:"timestamp"`
}

// NewRunRecord fills in a fresh id and timestamp.
func NewRunRecord(question string) RunRecord {
	return RunRecord{
		ID:        uuid.NewString(),
		Question:  question,
		Status:    StatusOK,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Summary aggregates the stored runs.
type Summary struct {
	TotalRuns    int     `json:"total_runs"`
	FailedRuns   int     `json:"failed_runs"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// HistoryStore persists runs. List returns the newest runs first.
type HistoryStore interface {
	Add(ctx context.Context, r RunRecord) error
	Get(ctx context.Context, id string) (RunRecord, error)
	List(ctx context.Context, limit int) ([]RunRecord, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (Summary, error)
	Close() error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
