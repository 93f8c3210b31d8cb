package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avoronov/storebox/internal/common"
	"github.com/avoronov/storebox/internal/dbx"
	"github.com/avoronov/storebox/internal/server/models"
)

// PostgresRepository implements user lookups over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, account_id, full_name, email, avatar, created_at`

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.AccountID, &user.FullName, &user.Email, &user.Avatar, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return &user, nil
}

// FindByID returns the user with the given id, or ErrNotFound.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+selectColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail returns the user with the given email, or ErrNotFound.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+selectColumns+` FROM users WHERE email = $1`, email)
}

// FindByAccountID returns the user in the given account namespace, or
// ErrNotFound.
func (r *PostgresRepository) FindByAccountID(ctx context.Context, accountID string) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+selectColumns+` FROM users WHERE account_id = $1`, accountID)
}

// Create inserts a new user record and returns it with store-assigned id
// and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (account_id, full_name, email, avatar)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + selectColumns

	var created models.User
	err := r.db.QueryRowContext(ctx, query, user.AccountID, user.FullName, user.Email, user.Avatar).
		Scan(&created.ID, &created.AccountID, &created.FullName, &created.Email, &created.Avatar, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &created, nil
}
