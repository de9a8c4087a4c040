package repository

import (
	"context"
	"testing"

	"libraryhub/internal/microservices/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_UpsertKeepsRole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Profile{ID: "admin-1", FullName: "Old", Role: models.RoleAdmin}).Error)

	require.NoError(t, repo.Upsert(ctx, &models.Profile{
		ID:       "admin-1",
		FullName: "New Name",
		Email:    "new@example.com",
		Phone:    "555",
	}))

	got, err := repo.FindByID(ctx, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.FullName)
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, "555", got.Phone)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestProfileRepository_UpsertInsertsMember(t *testing.T) {
	repo := NewProfileRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Profile{ID: "user-1", FullName: "A", Email: "a@x.io", Phone: "1"}))
	require.NoError(t, repo.Upsert(ctx, &models.Profile{ID: "user-1", FullName: "A", Email: "a@x.io", Phone: "1"}))

	got, err := repo.FindByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, got.Role)
}

func TestProfileRepository_Find(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.Profile{ID: "u1", FullName: "One"}))
	require.NoError(t, repo.Upsert(ctx, &models.Profile{ID: "u2", FullName: "Two"}))

	_, err := repo.FindByID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := repo.FindByIDs(ctx, []string{"u1", "u2", "nobody"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
