package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/accountd/internal/dbx"
	"github.com/dmitrijs2005/accountd/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewRepositoryManager_Dialects(t *testing.T) {
	for _, d := range []dbx.Dialect{dbx.DialectPostgres, dbx.DialectSQLite} {
		m, err := NewRepositoryManager(d)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", d, err)
		}
		var _ RepositoryManager = m
	}

	if _, err := NewRepositoryManager("mysql"); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}

func TestUsers_ReturnsRepository(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m, _ := NewRepositoryManager(dbx.DialectPostgres)
	if u := m.Users(db); u == nil {
		t.Fatal("Users() nil")
	}
	var _ users.Repository = m.Users(db)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	tests := []struct {
		dialect dbx.Dialect
		wantDir string
	}{
		{dbx.DialectPostgres, "postgres"},
		{dbx.DialectSQLite, "sqlite"},
	}

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	for _, tt := range tests {
		gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			if dir != tt.wantDir {
				return errors.New("unexpected dir " + dir)
			}
			if len(opts) != 0 {
				return errors.New("unexpected opts")
			}
			return nil
		}

		m, _ := NewRepositoryManager(tt.dialect)
		if err := m.RunMigrations(context.Background(), db); err != nil {
			t.Fatalf("%s: RunMigrations error: %v", tt.dialect, err)
		}
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m, _ := NewRepositoryManager(dbx.DialectPostgres)
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestRunMigrations_SQLiteSchema(t *testing.T) {
	db, _, err := dbx.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	m, _ := NewRepositoryManager(dbx.DialectSQLite)
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		t.Fatalf("users table missing: %v", err)
	}
}
