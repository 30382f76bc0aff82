package workers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/alimgiray/devmatch/internal/repositories"
	"github.com/alimgiray/devmatch/internal/services"
	"github.com/alimgiray/devmatch/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	jobRepo    *repositories.JobRepository
	runService *services.MatchRunService
}

func newFixture(t *testing.T) *fixture {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	jobRepo := repositories.NewJobRepository(db)
	matcher := services.NewMatchService(
		services.NewNormalizerService(),
		services.NewTextSimilarityService(),
		services.NewCommonPrefixSet("me", "github", "mail", "hi", "hello", "info", "contact"),
		2,
	)
	runService := services.NewMatchRunService(
		repositories.NewMatchRunRepository(db),
		repositories.NewMatchEvidenceRepository(db),
		services.NewJobService(jobRepo),
		matcher,
	)
	return &fixture{jobRepo: jobRepo, runService: runService}
}

var developers = []models.Developer{
	{Name: "John Smith", Email: "john@example.com"},
	{Name: "Jon Smith", Email: "j@example.com"},
}

func (f *fixture) waitForRun(t *testing.T, runID string) *models.MatchRun {
	var run *models.MatchRun
	require.Eventually(t, func() bool {
		var err error
		run, err = f.runService.GetRun(runID)
		return err == nil && run.Status == models.RunStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
	return run
}

func TestMatchWorkerProcessesPendingJob(t *testing.T) {
	f := newFixture(t)

	run, err := f.runService.Submit("test", 0.9, developers)
	require.NoError(t, err)

	worker := NewMatchWorker("match-test", f.jobRepo, f.runService)
	worker.PollInterval = 10 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- worker.Start(context.Background()) }()

	stored := f.waitForRun(t, run.ID)
	assert.Equal(t, 1, stored.MatchCount)

	require.Eventually(t, func() bool {
		jobs, err := f.jobRepo.GetByRunID(run.ID)
		return err == nil && len(jobs) == 1 && jobs[0].IsCompleted()
	}, 5*time.Second, 10*time.Millisecond)

	assert.True(t, worker.IsRunning())
	require.NoError(t, worker.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.False(t, worker.IsRunning())
}

func TestMatchWorkerStopsOnContextCancel(t *testing.T) {
	f := newFixture(t)

	worker := NewMatchWorker("match-test", f.jobRepo, f.runService)
	worker.PollInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorkerManagerRequeuesInterruptedJobs(t *testing.T) {
	f := newFixture(t)

	run, err := f.runService.Submit("test", 0.9, developers)
	require.NoError(t, err)

	// Simulate a job left behind by a process that died mid-run.
	claimed, err := f.jobRepo.ClaimNextPendingJob(models.JobTypeMatch, "match-dead")
	require.NoError(t, err)
	require.NotNil(t, claimed)

	manager := NewWorkerManager(f.jobRepo, f.runService, 2)
	require.NoError(t, manager.StartAll())

	f.waitForRun(t, run.ID)

	status := manager.GetWorkerStatus()
	assert.Len(t, status, 2)
	assert.Contains(t, status, "match-1")
	assert.Contains(t, status, "match-2")

	require.NoError(t, manager.StopAll())
	for id, running := range manager.GetWorkerStatus() {
		assert.False(t, running, id)
	}
}
