// Package repomanager vends repository implementations for the configured
// SQL dialect and applies the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/accountd/internal/dbx"
	"github.com/dmitrijs2005/accountd/internal/server/migrations"
	"github.com/dmitrijs2005/accountd/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}

// SQLRepositoryManager binds repositories to one dialect.
type SQLRepositoryManager struct {
	dialect      dbx.Dialect
	gooseDialect string
	dir          string
}

// NewRepositoryManager returns a manager for dialect.
func NewRepositoryManager(dialect dbx.Dialect) (RepositoryManager, error) {
	switch dialect {
	case dbx.DialectPostgres:
		return &SQLRepositoryManager{dialect: dialect, gooseDialect: "pgx", dir: migrations.PostgresDir}, nil
	case dbx.DialectSQLite:
		return &SQLRepositoryManager{dialect: dialect, gooseDialect: "sqlite3", dir: migrations.SQLiteDir}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.dialect)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations creates the schema from the embedded migrations of the
// manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.gooseDialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, m.dir); err != nil {
		return err
	}
	return nil
}
