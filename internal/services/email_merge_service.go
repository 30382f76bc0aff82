package services

import (
	"database/sql"
	"fmt"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/alimgiray/devmatch/internal/repositories"
)

type EmailMergeService struct {
	emailMergeRepo *repositories.EmailMergeRepository
	evidenceRepo   *repositories.MatchEvidenceRepository
}

func NewEmailMergeService(emailMergeRepo *repositories.EmailMergeRepository, evidenceRepo *repositories.MatchEvidenceRepository) *EmailMergeService {
	return &EmailMergeService{
		emailMergeRepo: emailMergeRepo,
		evidenceRepo:   evidenceRepo,
	}
}

// AcceptMatch records a reported match of a run as an email merge, folding
// the second email of the pair into the first
func (s *EmailMergeService) AcceptMatch(runID, evidenceID string) (*models.EmailMerge, error) {
	evidence, err := s.evidenceRepo.GetByID(evidenceID)
	if err != nil {
		return nil, err
	}
	if evidence.RunID != runID {
		return nil, fmt.Errorf("match %s does not belong to run %s: %w", evidenceID, runID, sql.ErrNoRows)
	}

	merge := models.NewEmailMerge(runID, evidence.ID, evidence.Email2, evidence.Email1)
	if err := s.emailMergeRepo.Create(merge); err != nil {
		return nil, err
	}
	return merge, nil
}

// GetEmailMergeByID retrieves an email merge by ID
func (s *EmailMergeService) GetEmailMergeByID(id string) (*models.EmailMerge, error) {
	return s.emailMergeRepo.GetByID(id)
}

// GetEmailMergesByRunID retrieves all email merges for a run
func (s *EmailMergeService) GetEmailMergesByRunID(runID string) ([]*models.EmailMerge, error) {
	return s.emailMergeRepo.GetByRunID(runID)
}

// GetMergedEmailsForRun returns a map of source_email -> target_email for a run
func (s *EmailMergeService) GetMergedEmailsForRun(runID string) (map[string]string, error) {
	return s.emailMergeRepo.GetMergedEmailsForRun(runID)
}

// DeleteEmailMerge deletes an email merge by ID
func (s *EmailMergeService) DeleteEmailMerge(id string) error {
	return s.emailMergeRepo.Delete(id)
}
