// Package users persists account records.
package users

import (
	"context"

	"github.com/dmitrijs2005/accountd/internal/server/models"
)

// Repository stores users. Reads by id never return the password hash.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateByID(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
}
