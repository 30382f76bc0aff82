package repositories

import (
	"database/sql"

	"github.com/alimgiray/devmatch/internal/models"
)

type EmailMergeRepository struct {
	db *sql.DB
}

func NewEmailMergeRepository(db *sql.DB) *EmailMergeRepository {
	return &EmailMergeRepository{db: db}
}

// Create creates a new email merge
func (r *EmailMergeRepository) Create(merge *models.EmailMerge) error {
	query := `
		INSERT INTO email_merges (id, run_id, evidence_id, source_email, target_email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		merge.ID, merge.RunID, merge.EvidenceID, merge.SourceEmail, merge.TargetEmail,
		merge.CreatedAt, merge.UpdatedAt,
	)

	return translateError(err)
}

// GetByID retrieves an email merge by ID
func (r *EmailMergeRepository) GetByID(id string) (*models.EmailMerge, error) {
	query := `
		SELECT id, run_id, evidence_id, source_email, target_email, created_at, updated_at
		FROM email_merges WHERE id = ?
	`

	merge := &models.EmailMerge{}
	err := r.db.QueryRow(query, id).Scan(
		&merge.ID, &merge.RunID, &merge.EvidenceID, &merge.SourceEmail, &merge.TargetEmail,
		&merge.CreatedAt, &merge.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return merge, nil
}

// GetByRunID retrieves all email merges for a run
func (r *EmailMergeRepository) GetByRunID(runID string) ([]*models.EmailMerge, error) {
	query := `
		SELECT id, run_id, evidence_id, source_email, target_email, created_at, updated_at
		FROM email_merges WHERE run_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	merges := make([]*models.EmailMerge, 0)
	for rows.Next() {
		merge := &models.EmailMerge{}
		err := rows.Scan(
			&merge.ID, &merge.RunID, &merge.EvidenceID, &merge.SourceEmail, &merge.TargetEmail,
			&merge.CreatedAt, &merge.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		merges = append(merges, merge)
	}

	return merges, rows.Err()
}

// GetMergedEmailsForRun returns a map of source_email -> target_email for a run
func (r *EmailMergeRepository) GetMergedEmailsForRun(runID string) (map[string]string, error) {
	query := `
		SELECT source_email, target_email
		FROM email_merges WHERE run_id = ?
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mergedEmails := make(map[string]string)
	for rows.Next() {
		var sourceEmail, targetEmail string
		if err := rows.Scan(&sourceEmail, &targetEmail); err != nil {
			return nil, err
		}
		mergedEmails[sourceEmail] = targetEmail
	}

	return mergedEmails, rows.Err()
}

// Delete deletes an email merge by ID
func (r *EmailMergeRepository) Delete(id string) error {
	query := `DELETE FROM email_merges WHERE id = ?`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
