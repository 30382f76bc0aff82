package services

import (
	"fmt"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/alimgiray/devmatch/internal/repositories"
)

// JobService handles job creation and management
type JobService struct {
	jobRepo *repositories.JobRepository
}

// NewJobService creates a new job service
func NewJobService(jobRepo *repositories.JobRepository) *JobService {
	return &JobService{
		jobRepo: jobRepo,
	}
}

// CreateMatchJob enqueues a match job for a run
func (s *JobService) CreateMatchJob(runID string) (*models.Job, error) {
	hasActive, err := s.HasActiveJob(runID, models.JobTypeMatch)
	if err != nil {
		return nil, err
	}
	if hasActive {
		return nil, fmt.Errorf("a match job is already in progress or pending for this run")
	}

	job := models.NewJob(runID, models.JobTypeMatch)
	if err := s.jobRepo.Create(job); err != nil {
		return nil, err
	}

	return job, nil
}

// HasActiveJob checks if there's already a pending or in-progress job of the specified type for a run
func (s *JobService) HasActiveJob(runID string, jobType models.JobType) (bool, error) {
	existingJobs, err := s.jobRepo.GetByRunID(runID)
	if err != nil {
		return false, fmt.Errorf("failed to check existing jobs: %w", err)
	}

	for _, existingJob := range existingJobs {
		if existingJob.JobType == jobType &&
			(existingJob.Status == models.JobStatusPending || existingJob.Status == models.JobStatusInProgress) {
			return true, nil
		}
	}

	return false, nil
}

// GetJobsByRun retrieves all jobs for a run
func (s *JobService) GetJobsByRun(runID string) ([]*models.Job, error) {
	return s.jobRepo.GetByRunID(runID)
}
