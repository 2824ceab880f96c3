package repository

import (
	"context"
	"testing"

	"mindcare/internal/entities"
	"mindcare/internal/infrastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *SQLiteUserRepository {
	t.Helper()
	client, err := infrastructure.NewSQLiteClient(context.Background(), "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewSQLiteUserRepository(client.DB)
}

func TestSQLiteUserRepository_CreateAndGet(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	user := &entities.User{Username: "sam", PasswordHash: "hash", Role: "user"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	got, err := repo.GetByUsername(ctx, "sam")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, "user", got.Role)
}

func TestSQLiteUserRepository_NotFound(t *testing.T) {
	repo := newSQLiteRepo(t)

	got, err := repo.GetByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteUserRepository_Duplicate(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.User{Username: "sam", PasswordHash: "a", Role: "user"}))
	err := repo.Create(ctx, &entities.User{Username: "sam", PasswordHash: "b", Role: "user"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}
