package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/accountd/internal/common"
	"github.com/dmitrijs2005/accountd/internal/dbx"
	"github.com/dmitrijs2005/accountd/internal/server/models"
	"github.com/dmitrijs2005/accountd/internal/server/repositories/repotest"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_CreateFindUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(repotest.OpenSQLite(t), dbx.DialectSQLite)

	created, err := repo.Create(ctx, ann())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	byEmail, err := repo.FindByEmail(ctx, "ANN@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	want := &models.User{
		ID:      created.ID,
		Name:    "Ann",
		Email:   "ann@x.com",
		Age:     30,
		DOB:     models.NewDate(time.Date(1994, 1, 1, 0, 0, 0, 0, time.UTC)),
		Contact: "5551234567",
	}
	if diff := cmp.Diff(want, byID); diff != "" {
		t.Fatalf("FindByID mismatch (-want +got):\n%s", diff)
	}

	updated, err := repo.UpdateByID(ctx, created.ID, models.ProfileUpdate{
		Name:    "Ann B",
		Age:     31,
		DOB:     models.NewDate(time.Date(1993, 2, 2, 0, 0, 0, 0, time.UTC)),
		Contact: "1234567890",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann B", updated.Name)
	assert.Equal(t, "1234567890", updated.Contact)
	assert.Equal(t, "1993-02-02", updated.DOB.String())
	assert.Empty(t, updated.PasswordHash)

	again, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 31, again.Age)
	assert.Equal(t, "ann@x.com", again.Email)
}

func TestSQLite_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(repotest.OpenSQLite(t), dbx.DialectSQLite)

	_, err := repo.Create(ctx, ann())
	require.NoError(t, err)

	dup := ann()
	dup.Email = "ann@X.COM"
	_, err = repo.Create(ctx, dup)
	assert.True(t, errors.Is(err, common.ErrDuplicateKey), "got %v", err)
}

func TestSQLite_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(repotest.OpenSQLite(t), dbx.DialectSQLite)

	_, err := repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.FindByEmail(ctx, "nope@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.UpdateByID(ctx, "nope", models.ProfileUpdate{
		Name: "A", Age: 1, DOB: models.NewDate(time.Now()), Contact: "1234567890",
	})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
