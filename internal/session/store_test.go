package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RejectsBadPaths(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, "")
	assert.Error(t, err)

	_, err = Open(ctx, "   ")
	assert.Error(t, err)

	_, err = Open(ctx, "../escape/session.db")
	assert.Error(t, err)
}

func TestSetGet_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, found, err := s.Get(ctx, "user")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "user", "alice"))
	got, found, err := s.Get(ctx, "user")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alice", got)

	// Upsert overwrites
	require.NoError(t, s.Set(ctx, "user", "bob"))
	got, _, err = s.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "bob", got)
}

func TestSet_RejectsEmptyKey(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Set(context.Background(), "  ", "value"))
}

func TestSeed_IsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seeds := map[string]string{"user": "default", "project": "4"}
	require.NoError(t, s.Seed(ctx, seeds))

	// User changed a value after first boot; re-seeding must not clobber it.
	require.NoError(t, s.Set(ctx, "user", "alice"))
	require.NoError(t, s.Seed(ctx, seeds))

	got, _, err := s.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	got, _, err = s.Get(ctx, "project")
	require.NoError(t, err)
	assert.Equal(t, "4", got)
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "user", "alice"))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, found, err := s.Get(ctx, "user")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alice", got)
}

func TestNilStore_FailsGracefully(t *testing.T) {
	var s *Store
	ctx := context.Background()

	assert.NoError(t, s.Close())
	_, _, err := s.Get(ctx, "user")
	assert.Error(t, err)
	assert.Error(t, s.Set(ctx, "user", "x"))
	assert.Error(t, s.Seed(ctx, map[string]string{"a": "b"}))
}
