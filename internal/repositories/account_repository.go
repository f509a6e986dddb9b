package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrAccountNotFound = errors.New("account not found")

// AccountRepository abstracts account lookup and presence persistence.
type AccountRepository interface {
	GetByID(ctx context.Context, id int) (models.Account, error)
	GetByPlatformID(ctx context.Context, platformID int64) (models.Account, error)
	GetByUsername(ctx context.Context, username string) (models.Account, error)
	SetOnline(ctx context.Context, platformID int64, online bool) error
	IsOnline(ctx context.Context, platformID int64) (bool, error)
}

// AccountRepo is a sqlx-backed repository.
type AccountRepo struct {
	db *sqlx.DB
}

// NewAccountRepo constructs an AccountRepo.
func NewAccountRepo(db *sqlx.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

const accountColumns = `id, platform_id, first_name, last_name, username, bio, is_online, last_seen, created_at`

// GetByID fetches an account by its internal id.
func (r *AccountRepo) GetByID(ctx context.Context, id int) (models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrAccountNotFound
	}
	return account, err
}

// GetByPlatformID fetches an account by its external platform id.
func (r *AccountRepo) GetByPlatformID(ctx context.Context, platformID int64) (models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account, `SELECT `+accountColumns+` FROM accounts WHERE platform_id=$1`, platformID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrAccountNotFound
	}
	return account, err
}

// GetByUsername fetches an account by username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (models.Account, error) {
	var account models.Account
	err := r.db.GetContext(ctx, &account, `SELECT `+accountColumns+` FROM accounts WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrAccountNotFound
	}
	return account, err
}

// SetOnline updates the durable presence flag. Going offline also stamps
// last_seen; going online leaves last_seen untouched so repeated connects
// stay idempotent.
func (r *AccountRepo) SetOnline(ctx context.Context, platformID int64, online bool) error {
	return withRetry(func() error {
		res, err := r.db.ExecContext(ctx,
			`UPDATE accounts SET is_online=$2, last_seen = CASE WHEN $2 THEN last_seen ELSE NOW() END WHERE platform_id=$1`,
			platformID, online)
		if err != nil {
			return err
		}
		count, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrAccountNotFound
		}
		return nil
	})
}

// IsOnline reports the durable presence flag.
func (r *AccountRepo) IsOnline(ctx context.Context, platformID int64) (bool, error) {
	var online bool
	err := r.db.GetContext(ctx, &online, `SELECT is_online FROM accounts WHERE platform_id=$1`, platformID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrAccountNotFound
	}
	return online, err
}
