package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the lifecycle state of a match run
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusInProgress RunStatus = "in-progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// MatchRun is one execution of the matcher over a submitted developer list
type MatchRun struct {
	ID             string     `json:"id"`
	Source         string     `json:"source"`
	Threshold      float64    `json:"threshold"`
	Status         RunStatus  `json:"status"`
	DeveloperCount int        `json:"developer_count"`
	PairCount      int        `json:"pair_count"`
	MatchCount     int        `json:"match_count"`
	ErrorMessage   *string    `json:"error_message"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewMatchRun creates a pending MatchRun with a generated UUID
func NewMatchRun(source string, threshold float64, developerCount int) *MatchRun {
	now := time.Now()
	return &MatchRun{
		ID:             uuid.New().String(),
		Source:         source,
		Threshold:      threshold,
		Status:         RunStatusPending,
		DeveloperCount: developerCount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// MarkStarted marks the run as in progress
func (r *MatchRun) MarkStarted() {
	now := time.Now()
	r.Status = RunStatusInProgress
	r.StartedAt = &now
}

// MarkCompleted records the report totals and completes the run
func (r *MatchRun) MarkCompleted(report *MatchReport) {
	now := time.Now()
	r.Status = RunStatusCompleted
	r.PairCount = report.PairsEvaluated
	r.MatchCount = len(report.Matches)
	r.CompletedAt = &now
}

// MarkFailed marks the run as failed with the given message
func (r *MatchRun) MarkFailed(message string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.ErrorMessage = &message
	r.CompletedAt = &now
}
