package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-jobboard/app/entity"
)

type ApplicationRepository struct {
	db DBTX
}

func NewApplicationRepository(db DBTX) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create returns ErrDuplicate when the applicant already applied for the job.
func (r *ApplicationRepository) Create(ctx context.Context, application *entity.Application) error {
	query := `
		INSERT INTO applications (job_id, applicant_id, cover_letter, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		application.JobID,
		application.ApplicantID,
		application.CoverLetter,
		application.CreatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	application.ID = uint64(id)
	return nil
}

func (r *ApplicationRepository) ExistsForApplicant(ctx context.Context, jobID, applicantID uint64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM applications WHERE job_id = ? AND applicant_id = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, jobID, applicantID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
