package repositories

import (
	"database/sql"
	"sync"
	"time"

	"github.com/alimgiray/devmatch/internal/models"
)

const jobColumns = `id, run_id, job_type, status, error_message, started_at, completed_at, worker_id, created_at, updated_at`

// JobRepository handles database operations for jobs
type JobRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job
func (r *JobRepository) Create(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		job.ID,
		job.RunID,
		job.JobType,
		job.Status,
		job.ErrorMessage,
		job.StartedAt,
		job.CompletedAt,
		job.WorkerID,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// GetByID retrieves a job by ID
func (r *JobRepository) GetByID(id string) (*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`

	job, err := scanJob(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	return job, nil
}

// GetByRunID retrieves all jobs for a run
func (r *JobRepository) GetByRunID(runID string) ([]*models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE run_id = ? ORDER BY created_at DESC`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// ClaimNextPendingJob retrieves the oldest pending job of a type (FIFO) and
// marks it in-progress for workerID. Returns nil when no job is pending.
func (r *JobRepository) ClaimNextPendingJob(jobType models.JobType, workerID string) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Use a transaction to ensure atomicity
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = ? AND job_type = ?
		ORDER BY created_at ASC
		LIMIT 1
	`

	job, err := scanJob(tx.QueryRow(query, models.JobStatusPending, jobType))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No pending jobs found
		}
		return nil, err
	}

	// Mark the job as in-progress
	job.MarkStarted(workerID)
	job.UpdatedAt = time.Now()
	updateQuery := `
		UPDATE jobs
		SET status = ?, started_at = ?, worker_id = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	if _, err := tx.Exec(updateQuery, job.Status, job.StartedAt, job.WorkerID, job.UpdatedAt, job.ID, models.JobStatusPending); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return job, nil
}

// Update updates an existing job
func (r *JobRepository) Update(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job.UpdatedAt = time.Now()

	query := `
		UPDATE jobs
		SET status = ?, error_message = ?, started_at = ?, completed_at = ?, worker_id = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		job.Status,
		job.ErrorMessage,
		job.StartedAt,
		job.CompletedAt,
		job.WorkerID,
		job.UpdatedAt,
		job.ID,
	)
	return err
}

// ResetInProgressJobs returns jobs left in-progress by a previous process to pending
func (r *JobRepository) ResetInProgressJobs() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE jobs
		SET status = ?, started_at = NULL, worker_id = NULL, updated_at = ?
		WHERE status = ?
	`

	result, err := r.db.Exec(query, models.JobStatusPending, time.Now(), models.JobStatusInProgress)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanJob(row rowScanner) (*models.Job, error) {
	job := &models.Job{}
	err := row.Scan(
		&job.ID,
		&job.RunID,
		&job.JobType,
		&job.Status,
		&job.ErrorMessage,
		&job.StartedAt,
		&job.CompletedAt,
		&job.WorkerID,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}
