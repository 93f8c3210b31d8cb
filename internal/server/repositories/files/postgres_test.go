package files

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avoronov/storebox/internal/common"
	"github.com/avoronov/storebox/internal/server/models"
)

var fileColumns = []string{
	"id", "name", "type", "extension", "url", "size",
	"owner", "account_id", "users", "bucket_file_id", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func fileRow(t time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(fileColumns).
		AddRow("f1", "report.pdf", "document", "pdf", "http://s3/bucket/k1", int64(42),
			"u1", "a1", []byte(`["x@example.com"]`), "k1", t, t)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	q := `(?s)^\s*INSERT\s+INTO\s+files\s*\(name, type, extension, url, size, owner, account_id, users, bucket_file_id\).*RETURNING\b`

	mock.ExpectQuery(q).
		WithArgs("report.pdf", "document", "pdf", "http://s3/bucket/k1", int64(42),
			"u1", "a1", []byte(`[]`), "k1").
		WillReturnRows(fileRow(now))

	created, err := repo.Create(context.Background(), &models.File{
		Name:         "report.pdf",
		Type:         "document",
		Extension:    "pdf",
		URL:          "http://s3/bucket/k1",
		Size:         42,
		Owner:        "u1",
		AccountID:    "a1",
		BucketFileID: "k1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "f1" {
		t.Fatalf("expected store-assigned id, got %+v", created)
	}
	if len(created.Users) != 1 || created.Users[0] != "x@example.com" {
		t.Fatalf("users not decoded: %+v", created.Users)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+files`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.File{Name: "a.txt"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM files WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestList_ScopedAndDecoded(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(fileColumns).
		AddRow("f1", "a.png", "image", "png", "u", int64(10), "u1", "a1", []byte(`[]`), "k1", now, now).
		AddRow("f2", "b.png", "image", "png", "u", int64(5), "u2", "a2", []byte(`["u1@example.com"]`), "k2", now, now)

	mock.ExpectQuery(`SELECT .* FROM files WHERE \(owner = \$1 OR account_id = \$2 OR jsonb_exists\(users, \$3\)\) ORDER BY created_at DESC`).
		WithArgs("u1", "a1", "u1@example.com").
		WillReturnRows(rows)

	result, err := repo.List(context.Background(), testPrincipal, ListOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result))
	}
	if result[0].ID != "f1" || result[1].ID != "f2" {
		t.Fatalf("store order not preserved: %v, %v", result[0].ID, result[1].ID)
	}
	if len(result[1].Users) != 1 {
		t.Fatalf("users not decoded: %+v", result[1].Users)
	}
}

func TestList_InvalidSortPropagates(t *testing.T) {
	repo, _, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.List(context.Background(), testPrincipal, ListOptions{Sort: SortSpec{Field: "nope"}})
	if !errors.Is(err, common.ErrInvalidSortField) {
		t.Fatalf("want ErrInvalidSortField, got %v", err)
	}
}

func TestUpdateName(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE files SET name = \$2, updated_at = now\(\) WHERE id = \$1 RETURNING`).
		WithArgs("f1", "renamed.pdf").
		WillReturnRows(fileRow(now))

	updated, err := repo.UpdateName(context.Background(), "f1", "renamed.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != "f1" {
		t.Fatalf("unexpected record: %+v", updated)
	}
}

func TestUpdateName_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE files SET name = \$2`).
		WithArgs("missing", "x.pdf").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateName(context.Background(), "missing", "x.pdf")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUpdateUsers_ReplacesWholesale(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE files SET users = \$2, updated_at = now\(\) WHERE id = \$1 RETURNING`).
		WithArgs("f1", []byte(`["a@example.com","b@example.com"]`)).
		WillReturnRows(fileRow(now))

	_, err := repo.UpdateUsers(context.Background(), "f1", []string{"a@example.com", "b@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateUsers_EmptyListRevokes(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE files SET users = \$2`).
		WithArgs("f1", []byte(`[]`)).
		WillReturnRows(fileRow(now))

	_, err := repo.UpdateUsers(context.Background(), "f1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM files WHERE id = \$1`).
		WithArgs("f1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "f1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM files WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
