package workers

import (
	"context"
	"time"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/alimgiray/devmatch/internal/repositories"
	"github.com/alimgiray/devmatch/internal/services"
	"github.com/alimgiray/devmatch/pkg/logger"
)

const (
	defaultPollInterval  = 2 * time.Second
	defaultErrorInterval = 5 * time.Second
)

// MatchWorker handles match jobs
type MatchWorker struct {
	*BaseWorker
	jobRepo    *repositories.JobRepository
	runService *services.MatchRunService

	PollInterval  time.Duration
	ErrorInterval time.Duration
}

// NewMatchWorker creates a new match worker
func NewMatchWorker(workerID string, jobRepo *repositories.JobRepository, runService *services.MatchRunService) *MatchWorker {
	return &MatchWorker{
		BaseWorker:    NewBaseWorker(workerID, models.JobTypeMatch),
		jobRepo:       jobRepo,
		runService:    runService,
		PollInterval:  defaultPollInterval,
		ErrorInterval: defaultErrorInterval,
	}
}

// Start begins the match worker process
func (w *MatchWorker) Start(ctx context.Context) error {
	w.setRunning(true)
	defer w.setRunning(false)
	logger.Infof("Match worker %s started", w.WorkerID)

	for {
		select {
		case <-ctx.Done():
			logger.Infof("Match worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			logger.Infof("Match worker %s stopping", w.WorkerID)
			return nil
		default:
		}

		job, err := w.jobRepo.ClaimNextPendingJob(models.JobTypeMatch, w.WorkerID)
		if err != nil {
			logger.WithError(err).Errorf("Match worker %s error getting job", w.WorkerID)
			w.wait(ctx, w.ErrorInterval)
			continue
		}

		if job == nil {
			// No jobs available, wait and try again
			w.wait(ctx, w.PollInterval)
			continue
		}

		w.processMatchJob(ctx, job)
	}
}

// wait blocks for d unless the worker is stopped first
func (w *MatchWorker) wait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-w.StopChan:
	case <-timer.C:
	}
}

// processMatchJob executes the run behind a claimed job and records the outcome
func (w *MatchWorker) processMatchJob(ctx context.Context, job *models.Job) {
	logger.Infof("Match worker %s processing job %s for run %s", w.WorkerID, job.ID, job.RunID)

	if err := w.runService.Execute(ctx, job.RunID); err != nil {
		logger.WithError(err).Errorf("Match worker %s failed job %s", w.WorkerID, job.ID)
		job.MarkFailed(err.Error())
	} else {
		job.MarkCompleted()
	}

	if err := w.jobRepo.Update(job); err != nil {
		logger.WithError(err).Errorf("Match worker %s error updating job %s", w.WorkerID, job.ID)
		return
	}

	if job.IsCompleted() {
		logger.Infof("Match worker %s completed job %s", w.WorkerID, job.ID)
	}
}
