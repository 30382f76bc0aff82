package repositories

import (
	"database/sql"

	"github.com/alimgiray/devmatch/internal/models"
)

const matchEvidenceColumns = `id, run_id, position, name_1, email_1, name_2, email_2,
	c1, c2, c3_1, c3_2, c4, c5, c6, c7, created_at`

type MatchEvidenceRepository struct {
	db *sql.DB
}

func NewMatchEvidenceRepository(db *sql.DB) *MatchEvidenceRepository {
	return &MatchEvidenceRepository{db: db}
}

// CreateBatch stores all rows of a report in one transaction
func (r *MatchEvidenceRepository) CreateBatch(evidence []models.MatchEvidence) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO match_evidence (` + matchEvidenceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range evidence {
		_, err := stmt.Exec(
			e.ID, e.RunID, e.Position, e.Name1, e.Email1, e.Name2, e.Email2,
			e.C1, e.C2, e.C31, e.C32, e.C4, e.C5, e.C6, e.C7, e.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves one evidence row
func (r *MatchEvidenceRepository) GetByID(id string) (*models.MatchEvidence, error) {
	query := `SELECT ` + matchEvidenceColumns + ` FROM match_evidence WHERE id = ?`

	e, err := scanMatchEvidence(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByRunID retrieves the rows of a run in report order
func (r *MatchEvidenceRepository) GetByRunID(runID string) ([]models.MatchEvidence, error) {
	query := `SELECT ` + matchEvidenceColumns + ` FROM match_evidence WHERE run_id = ? ORDER BY position ASC`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	evidence := make([]models.MatchEvidence, 0)
	for rows.Next() {
		e, err := scanMatchEvidence(rows)
		if err != nil {
			return nil, err
		}
		evidence = append(evidence, *e)
	}

	return evidence, rows.Err()
}

// DeleteByRunID deletes every row of a run
func (r *MatchEvidenceRepository) DeleteByRunID(runID string) error {
	query := `DELETE FROM match_evidence WHERE run_id = ?`
	_, err := r.db.Exec(query, runID)
	return err
}

func scanMatchEvidence(row rowScanner) (*models.MatchEvidence, error) {
	e := &models.MatchEvidence{}
	err := row.Scan(
		&e.ID, &e.RunID, &e.Position, &e.Name1, &e.Email1, &e.Name2, &e.Email2,
		&e.C1, &e.C2, &e.C31, &e.C32, &e.C4, &e.C5, &e.C6, &e.C7, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}
