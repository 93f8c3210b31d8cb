package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
)

func TestManagerVendsRepositories(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	m := NewPostgresRepositoryManager()
	if m.Users(db) == nil {
		t.Fatalf("expected users repository")
	}
	if m.Files(db) == nil {
		t.Fatalf("expected files repository")
	}
}

func TestRunMigrations_PropagatesError(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	wantErr := errors.New("migrate failed")
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return wantErr
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManager()
	if err := m.RunMigrations(context.Background(), db); !errors.Is(err, wantErr) {
		t.Fatalf("want %v, got %v", wantErr, err)
	}
}
