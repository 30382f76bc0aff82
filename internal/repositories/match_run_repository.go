package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/alimgiray/devmatch/internal/models"
)

const matchRunColumns = `id, source, threshold, status, developer_count, pair_count, match_count,
	error_message, started_at, completed_at, created_at, updated_at`

type MatchRunRepository struct {
	db *sql.DB
}

func NewMatchRunRepository(db *sql.DB) *MatchRunRepository {
	return &MatchRunRepository{db: db}
}

// Create stores a run together with the developer list it evaluates
func (r *MatchRunRepository) Create(run *models.MatchRun, devs []models.Developer) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO match_runs (` + matchRunColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		run.ID, run.Source, run.Threshold, run.Status, run.DeveloperCount, run.PairCount, run.MatchCount,
		run.ErrorMessage, run.StartedAt, run.CompletedAt, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO run_developers (run_id, position, name, email) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, dev := range devs {
		if _, err := stmt.Exec(run.ID, i, dev.Name, dev.Email); err != nil {
			return fmt.Errorf("failed to store developer %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a run by ID
func (r *MatchRunRepository) GetByID(id string) (*models.MatchRun, error) {
	query := `SELECT ` + matchRunColumns + ` FROM match_runs WHERE id = ?`

	run, err := scanMatchRun(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List retrieves the most recent runs first
func (r *MatchRunRepository) List(limit int) ([]*models.MatchRun, error) {
	query := `SELECT ` + matchRunColumns + ` FROM match_runs ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.MatchRun
	for rows.Next() {
		run, err := scanMatchRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetDevelopers returns the developer list of a run in submission order
func (r *MatchRunRepository) GetDevelopers(runID string) ([]models.Developer, error) {
	query := `SELECT name, email FROM run_developers WHERE run_id = ? ORDER BY position ASC`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devs []models.Developer
	for rows.Next() {
		var dev models.Developer
		if err := rows.Scan(&dev.Name, &dev.Email); err != nil {
			return nil, err
		}
		devs = append(devs, dev)
	}

	return devs, rows.Err()
}

// Update updates the mutable fields of a run
func (r *MatchRunRepository) Update(run *models.MatchRun) error {
	run.UpdatedAt = time.Now()

	query := `
		UPDATE match_runs SET
			status = ?, pair_count = ?, match_count = ?, error_message = ?,
			started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		run.Status, run.PairCount, run.MatchCount, run.ErrorMessage,
		run.StartedAt, run.CompletedAt, run.UpdatedAt, run.ID,
	)
	return err
}

// Delete deletes a run and, through cascades, everything attached to it
func (r *MatchRunRepository) Delete(id string) error {
	query := `DELETE FROM match_runs WHERE id = ?`
	_, err := r.db.Exec(query, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatchRun(row rowScanner) (*models.MatchRun, error) {
	run := &models.MatchRun{}
	err := row.Scan(
		&run.ID, &run.Source, &run.Threshold, &run.Status, &run.DeveloperCount, &run.PairCount, &run.MatchCount,
		&run.ErrorMessage, &run.StartedAt, &run.CompletedAt, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
