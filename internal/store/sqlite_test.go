package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, repo.Close())
	})
	return repo
}

func TestSetGetRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	_, ok, err := repo.Get(ctx, "user1", "calmmom-license")
	require.NoError(t, err)
	assert.False(t, ok, "unwritten key should be absent")

	require.NoError(t, repo.Set(ctx, "user1", "calmmom-license", "KEY-1234"))

	value, ok, err := repo.Get(ctx, "user1", "calmmom-license")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "KEY-1234", value)

	// Overwrite replaces the value.
	require.NoError(t, repo.Set(ctx, "user1", "calmmom-license", "KEY-5678"))
	value, ok, err = repo.Get(ctx, "user1", "calmmom-license")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "KEY-5678", value)
}

func TestValuesAreScopedPerUser(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "user1", "calmmom-streak", "3"))
	require.NoError(t, repo.Set(ctx, "user2", "calmmom-streak", "7"))

	value, ok, err := repo.Get(ctx, "user1", "calmmom-streak")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "3", value)

	value, ok, err = repo.Get(ctx, "user2", "calmmom-streak")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "7", value)
}

func TestDelete(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "user1", "calmmom-messages", "[]"))
	require.NoError(t, repo.Delete(ctx, "user1", "calmmom-messages"))

	_, ok, err := repo.Get(ctx, "user1", "calmmom-messages")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, repo.Delete(ctx, "user1", "calmmom-messages"))
}

func TestValuesByKey(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "user1", "calmmom-license", "KEY-A"))
	require.NoError(t, repo.Set(ctx, "user2", "calmmom-license", "KEY-B"))
	require.NoError(t, repo.Set(ctx, "user3", "calmmom-streak", "2"))

	values, err := repo.ValuesByKey(ctx, "calmmom-license")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user1": "KEY-A", "user2": "KEY-B"}, values)
}
