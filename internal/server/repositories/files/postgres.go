package files

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avoronov/storebox/internal/common"
	"github.com/avoronov/storebox/internal/dbx"
	"github.com/avoronov/storebox/internal/filex"
	"github.com/avoronov/storebox/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx). The users grant list is persisted as jsonb.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*models.File, error) {
	var item models.File
	var category string
	var users []byte
	if err := row.Scan(&item.ID, &item.Name, &category, &item.Extension, &item.URL, &item.Size,
		&item.Owner, &item.AccountID, &users, &item.BucketFileID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.Type = filex.Category(category)
	if len(users) > 0 {
		if err := json.Unmarshal(users, &item.Users); err != nil {
			return nil, fmt.Errorf("failed to decode users: %w", err)
		}
	}
	return &item, nil
}

func encodeUsers(emails []string) ([]byte, error) {
	if emails == nil {
		emails = []string{}
	}
	return json.Marshal(emails)
}

// Create inserts a new file record and returns it with store-assigned id
// and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	users, err := encodeUsers(file.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to encode users: %w", err)
	}

	query := `
		INSERT INTO files (name, type, extension, url, size, owner, account_id, users, bucket_file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + selectColumns

	row := r.db.QueryRowContext(ctx, query,
		file.Name, string(file.Type), file.Extension, file.URL, file.Size,
		file.Owner, file.AccountID, users, file.BucketFileID)

	created, err := scanFile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return created, nil
}

// GetByID returns the file record with the given id, or ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT ` + selectColumns + ` FROM files WHERE id = $1`

	item, err := scanFile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return item, nil
}

// List returns all file records visible to the principal, narrowed and
// ordered per opts. The query is composed by buildListQuery, which always
// applies the visibility predicate.
func (r *PostgresRepository) List(ctx context.Context, principal models.Principal, opts ListOptions) ([]*models.File, error) {
	query, args, err := buildListQuery(principal, opts)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		item, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateName replaces the display name of the file with the given id and
// returns the updated record, or ErrNotFound.
func (r *PostgresRepository) UpdateName(ctx context.Context, id string, name string) (*models.File, error) {
	query := `UPDATE files SET name = $2, updated_at = now() WHERE id = $1 RETURNING ` + selectColumns

	item, err := scanFile(r.db.QueryRowContext(ctx, query, id, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update file name: %w", err)
	}
	return item, nil
}

// UpdateUsers replaces the grant list wholesale and returns the updated
// record, or ErrNotFound. An empty list revokes all sharing.
func (r *PostgresRepository) UpdateUsers(ctx context.Context, id string, emails []string) (*models.File, error) {
	users, err := encodeUsers(emails)
	if err != nil {
		return nil, fmt.Errorf("failed to encode users: %w", err)
	}

	query := `UPDATE files SET users = $2, updated_at = now() WHERE id = $1 RETURNING ` + selectColumns

	item, err := scanFile(r.db.QueryRowContext(ctx, query, id, users))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update file users: %w", err)
	}
	return item, nil
}

// Delete removes the file record with the given id, or returns ErrNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
