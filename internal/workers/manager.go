package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/alimgiray/devmatch/internal/repositories"
	"github.com/alimgiray/devmatch/internal/services"
	"github.com/alimgiray/devmatch/pkg/logger"
)

// WorkerManager manages the background workers
type WorkerManager struct {
	workers     []Worker
	jobRepo     *repositories.JobRepository
	runService  *services.MatchRunService
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewWorkerManager creates a new worker manager running workerCount match workers
func NewWorkerManager(jobRepo *repositories.JobRepository, runService *services.MatchRunService, workerCount int) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	if workerCount < 1 {
		workerCount = 1
	}
	return &WorkerManager{
		workers:     make([]Worker, 0),
		jobRepo:     jobRepo,
		runService:  runService,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// StartAll requeues jobs interrupted by a previous shutdown and starts the workers
func (wm *WorkerManager) StartAll() error {
	reset, err := wm.jobRepo.ResetInProgressJobs()
	if err != nil {
		return fmt.Errorf("failed to reset interrupted jobs: %w", err)
	}
	if reset > 0 {
		logger.Warnf("Requeued %d interrupted jobs", reset)
	}

	logger.Infof("Starting workers - Match: %d", wm.workerCount)

	for i := 0; i < wm.workerCount; i++ {
		worker := NewMatchWorker(fmt.Sprintf("match-%d", i+1), wm.jobRepo, wm.runService)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	logger.Infof("Started %d total workers", len(wm.workers))
	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	logger.Info("Stopping all workers...")

	// Cancel the context to signal all workers to stop
	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.WithError(err).Errorf("Error stopping worker %s", worker.GetWorkerID())
		}
	}

	// Wait for all workers to finish
	wm.wg.Wait()

	logger.Info("All workers stopped")
	return nil
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Errorf("Worker %s stopped with error", worker.GetWorkerID())
		}
	}()
}

// GetWorkerStatus returns the status of all workers
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool)
	for _, worker := range wm.workers {
		status[worker.GetWorkerID()] = worker.IsRunning()
	}
	return status
}
