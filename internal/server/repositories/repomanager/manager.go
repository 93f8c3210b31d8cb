package repomanager

import (
	"context"
	"database/sql"

	"github.com/avoronov/storebox/internal/dbx"
	"github.com/avoronov/storebox/internal/server/repositories/files"
	"github.com/avoronov/storebox/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
}
