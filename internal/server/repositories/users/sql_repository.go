package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/accountd/internal/common"
	"github.com/dmitrijs2005/accountd/internal/dbx"
	"github.com/dmitrijs2005/accountd/internal/server/models"
	"github.com/google/uuid"
)

// SQLRepository is a Repository over Postgres or SQLite.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
	newID   func() string
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect, newID: uuid.NewString}
}

func (r *SQLRepository) q(query string) string {
	return dbx.Rebind(r.dialect, query)
}

// Create normalizes and validates user, assigns an id and inserts it.
// An existing email yields common.ErrDuplicateKey; a field violation
// yields *models.ValidationError.
func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.Normalize()
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if user.ID == "" {
		user.ID = r.newID()
	}

	query :=
		`INSERT INTO users (id, name, email, password_hash, age, dob, contact)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, r.q(query),
		user.ID, user.Name, user.Email, user.PasswordHash, user.Age, user.DOB, user.Contact)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateKey
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// FindByEmail returns the full record, password hash included, for
// credential checks.
func (r *SQLRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, email, password_hash, age, dob, contact FROM users
		 WHERE email = ?`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, r.q(query), strings.ToLower(strings.TrimSpace(email))).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Age, &user.DOB, &user.Contact)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, name, email, age, dob, contact FROM users
		 WHERE id = ?`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, r.q(query), id).
		Scan(&user.ID, &user.Name, &user.Email, &user.Age, &user.DOB, &user.Contact)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// UpdateByID writes the mutable profile fields and returns the updated
// record without the password hash.
func (r *SQLRepository) UpdateByID(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	query :=
		`UPDATE users SET name = ?, age = ?, dob = ?, contact = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?
		 RETURNING id, name, email, age, dob, contact`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, r.q(query),
		strings.TrimSpace(upd.Name), upd.Age, upd.DOB, upd.Contact, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.Age, &user.DOB, &user.Contact)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
