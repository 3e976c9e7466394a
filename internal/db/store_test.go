package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/informator/internal/kv"
)

const migrationsPath = "../../migrations"

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	conn, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "informator.db"))
	require.NoError(t, err)
	require.NoError(t, RunMigrations(conn, migrationsPath))
	s := NewStore(conn)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func exerciseStore(t *testing.T, s kv.Store) {
	ctx := context.Background()
	key := kv.ScreenKey("482913")
	_ = s.Remove(ctx, key)

	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, key, `{"modules":[]}`))
	require.NoError(t, s.Set(ctx, key, `{"modules":[{"id":"1","type":"time","data":{}}]}`))

	v, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"modules":[{"id":"1","type":"time","data":{}}]}`, v)

	require.NoError(t, s.Remove(ctx, key))
	require.NoError(t, s.Remove(ctx, key))
	_, ok, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, newSQLiteStore(t))
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "informator.db")

	conn, err := Open(DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(conn, migrationsPath))
	require.NoError(t, NewStore(conn).Set(ctx, kv.RegistryKey, "[]"))
	require.NoError(t, conn.Close())

	conn, err = Open(DriverSQLite, path)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, RunMigrations(conn, migrationsPath), "migrations are idempotent")

	v, ok, err := NewStore(conn).Get(ctx, kv.RegistryKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestRunMigrationsWithMissingPath(t *testing.T) {
	conn, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer conn.Close()

	// zero .up.sql files is not an error
	assert.NoError(t, RunMigrations(conn, "./does-not-exist"))
}

func TestPostgresStore(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := InitTestDB(migrationsPath)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}
