package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-jobboard/app/entity"
)

const userColumns = `id, first_name, last_name, email, password_hash, about, password_changed_at,
		       reset_token_hash, reset_token_expires_at, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create returns ErrDuplicate when the email is already taken.
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (first_name, last_name, email, password_hash, about, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.About,
		user.CreatedAt,
		user.UpdatedAt,
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
	user.ID = uint64(id)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE id = ?
	`
	return r.findOne(ctx, query, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE email = ?
	`
	return r.findOne(ctx, query, email)
}

// FindByValidResetToken matches the stored hash and requires the expiry to be after now.
func (r *UserRepository) FindByValidResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE reset_token_hash = ? AND reset_token_expires_at > ?
	`
	return r.findOne(ctx, query, tokenHash, now)
}

// SetResetToken writes only the reset token pair. Pass invalid values to clear it.
func (r *UserRepository) SetResetToken(ctx context.Context, userID uint64, tokenHash sql.NullString, expiresAt sql.NullTime) error {
	query := `
		UPDATE users SET
			reset_token_hash = ?,
			reset_token_expires_at = ?,
			updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query, tokenHash, expiresAt, time.Now(), userID)
	return err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID uint64, passwordHash string, changedAt time.Time) error {
	query := `
		UPDATE users SET
			password_hash = ?,
			password_changed_at = ?,
			updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query, passwordHash, changedAt, time.Now(), userID)
	return err
}

// ConsumeResetToken sets the new password and clears the reset token in one
// statement, but only while the stored hash still equals tokenHash and its
// expiry is after now. It reports false when another request consumed the
// token first or it lapsed in between.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, userID uint64, tokenHash string, now time.Time, passwordHash string, changedAt time.Time) (bool, error) {
	query := `
		UPDATE users SET
			password_hash = ?,
			password_changed_at = ?,
			reset_token_hash = NULL,
			reset_token_expires_at = NULL,
			updated_at = ?
		WHERE id = ? AND reset_token_hash = ? AND reset_token_expires_at > ?
	`
	result, err := r.db.ExecContext(ctx, query, passwordHash, changedAt, time.Now(), userID, tokenHash, now)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	user := &entity.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.About,
		&user.PasswordChangedAt,
		&user.ResetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
