package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/alimgiray/devmatch/internal/repositories"
	"github.com/alimgiray/devmatch/pkg/logger"
	"github.com/sirupsen/logrus"
)

// MatchRunService persists match runs and executes them
type MatchRunService struct {
	runRepo      *repositories.MatchRunRepository
	evidenceRepo *repositories.MatchEvidenceRepository
	jobService   *JobService
	matcher      *MatchService
}

func NewMatchRunService(
	runRepo *repositories.MatchRunRepository,
	evidenceRepo *repositories.MatchEvidenceRepository,
	jobService *JobService,
	matcher *MatchService,
) *MatchRunService {
	return &MatchRunService{
		runRepo:      runRepo,
		evidenceRepo: evidenceRepo,
		jobService:   jobService,
		matcher:      matcher,
	}
}

// Submit stores a pending run for devs and enqueues a match job for it
func (s *MatchRunService) Submit(source string, threshold float64, devs []models.Developer) (*models.MatchRun, error) {
	run, err := s.create(source, threshold, devs)
	if err != nil {
		return nil, err
	}

	if _, err := s.jobService.CreateMatchJob(run.ID); err != nil {
		return nil, fmt.Errorf("failed to enqueue match job: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"run_id":     run.ID,
		"source":     source,
		"developers": len(devs),
	}).Info("Match run submitted")

	return run, nil
}

// RunNow stores a run and executes it before returning
func (s *MatchRunService) RunNow(ctx context.Context, source string, threshold float64, devs []models.Developer) (*models.MatchRun, *models.MatchReport, error) {
	run, err := s.create(source, threshold, devs)
	if err != nil {
		return nil, nil, err
	}

	report, err := s.execute(ctx, run, devs)
	if err != nil {
		return run, nil, err
	}
	return run, report, nil
}

// Execute loads a stored run, matches its developers and records the outcome
func (s *MatchRunService) Execute(ctx context.Context, runID string) error {
	run, err := s.runRepo.GetByID(runID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	devs, err := s.runRepo.GetDevelopers(runID)
	if err != nil {
		return fmt.Errorf("failed to load developers for run %s: %w", runID, err)
	}

	_, err = s.execute(ctx, run, devs)
	return err
}

func (s *MatchRunService) create(source string, threshold float64, devs []models.Developer) (*models.MatchRun, error) {
	if err := models.ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	run := models.NewMatchRun(source, threshold, len(devs))
	if err := s.runRepo.Create(run, devs); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

func (s *MatchRunService) execute(ctx context.Context, run *models.MatchRun, devs []models.Developer) (*models.MatchReport, error) {
	run.MarkStarted()
	if err := s.runRepo.Update(run); err != nil {
		return nil, fmt.Errorf("failed to mark run started: %w", err)
	}

	report, err := s.matcher.Match(ctx, devs, run.Threshold)
	if err == nil {
		err = s.storeEvidence(run.ID, report)
	}
	if err != nil {
		run.MarkFailed(err.Error())
		if updateErr := s.runRepo.Update(run); updateErr != nil {
			logger.WithError(updateErr).Errorf("Failed to mark run %s failed", run.ID)
		}
		return nil, err
	}

	run.MarkCompleted(report)
	if err := s.runRepo.Update(run); err != nil {
		return nil, fmt.Errorf("failed to mark run completed: %w", err)
	}

	return report, nil
}

// storeEvidence replaces any evidence left by an earlier attempt of the run
func (s *MatchRunService) storeEvidence(runID string, report *models.MatchReport) error {
	if err := s.evidenceRepo.DeleteByRunID(runID); err != nil {
		return fmt.Errorf("failed to clear evidence: %w", err)
	}
	for i := range report.Matches {
		report.Matches[i].AttachToRun(runID, i)
	}
	if err := s.evidenceRepo.CreateBatch(report.Matches); err != nil {
		return fmt.Errorf("failed to store evidence: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *MatchRunService) GetRun(runID string) (*models.MatchRun, error) {
	return s.runRepo.GetByID(runID)
}

// ListRuns retrieves the most recent runs
func (s *MatchRunService) ListRuns(limit int) ([]*models.MatchRun, error) {
	return s.runRepo.List(limit)
}

// DeleteRun removes a run with its developers, evidence, jobs and merges
func (s *MatchRunService) DeleteRun(runID string) error {
	if _, err := s.runRepo.GetByID(runID); err != nil {
		return err
	}
	return s.runRepo.Delete(runID)
}

// GetReport rebuilds the match report of a run from stored evidence
func (s *MatchRunService) GetReport(runID string) (*models.MatchRun, *models.MatchReport, error) {
	run, err := s.runRepo.GetByID(runID)
	if err != nil {
		return nil, nil, err
	}

	matches, err := s.evidenceRepo.GetByRunID(runID)
	if err != nil {
		return nil, nil, err
	}

	return run, &models.MatchReport{
		Threshold:      run.Threshold,
		DeveloperCount: run.DeveloperCount,
		PairsEvaluated: run.PairCount,
		Matches:        matches,
	}, nil
}
