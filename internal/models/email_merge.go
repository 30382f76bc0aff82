package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailMerge records that a reviewer accepted a reported match, folding one
// email into another
type EmailMerge struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	EvidenceID  string    `json:"evidence_id"`
	SourceEmail string    `json:"source_email"` // The email being merged
	TargetEmail string    `json:"target_email"` // The email it is merged into
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEmailMerge creates a new email merge with a generated UUID
func NewEmailMerge(runID, evidenceID, sourceEmail, targetEmail string) *EmailMerge {
	now := time.Now()
	return &EmailMerge{
		ID:          uuid.New().String(),
		RunID:       runID,
		EvidenceID:  evidenceID,
		SourceEmail: sourceEmail,
		TargetEmail: targetEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
