package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportColumns is the header of a match report, in output order
var ReportColumns = []string{
	"name_1", "email_1", "name_2", "email_2",
	"c1", "c2", "c3.1", "c3.2", "c4", "c5", "c6", "c7",
}

// MatchEvidence is one reported pair of developers with the raw criteria
// values that led to the match
type MatchEvidence struct {
	ID        string    `json:"id,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	Position  int       `json:"position"`
	Name1     string    `json:"name_1"`
	Email1    string    `json:"email_1"`
	Name2     string    `json:"name_2"`
	Email2    string    `json:"email_2"`
	C1        float64   `json:"c1"`
	C2        float64   `json:"c2"`
	C31       float64   `json:"c3.1"`
	C32       float64   `json:"c3.2"`
	C4        bool      `json:"c4"`
	C5        bool      `json:"c5"`
	C6        bool      `json:"c6"`
	C7        bool      `json:"c7"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// AttachToRun assigns a fresh ID and the owning run to the evidence row
func (e *MatchEvidence) AttachToRun(runID string, position int) {
	e.ID = uuid.New().String()
	e.RunID = runID
	e.Position = position
	e.CreatedAt = time.Now()
}

// MatchReport is the ordered list of matched pairs produced by one run
type MatchReport struct {
	Threshold      float64         `json:"threshold"`
	DeveloperCount int             `json:"developer_count"`
	PairsEvaluated int             `json:"pairs_evaluated"`
	Matches        []MatchEvidence `json:"matches"`
}

// IsEmpty reports whether no pair matched
func (r *MatchReport) IsEmpty() bool {
	return len(r.Matches) == 0
}
