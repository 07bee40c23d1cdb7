package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-jobboard/app/entity"
)

type JobRepository struct {
	db DBTX
}

func NewJobRepository(db DBTX) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *entity.Job) error {
	query := `
		INSERT INTO jobs (title, description, posted_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		job.Title,
		job.Description,
		job.PostedBy,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	job.ID = uint64(id)
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id uint64) (*entity.Job, error) {
	query := `
		SELECT id, title, description, posted_by, created_at, updated_at
		FROM jobs WHERE id = ?
	`
	job := &entity.Job{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.Title,
		&job.Description,
		&job.PostedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}
