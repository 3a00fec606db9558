package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "params.db")
	store, err := Open(context.Background(), path)
	require.NoError(t, err, "Open should create and migrate the database")
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestOpen(t *testing.T) {
	_, err := Open(context.Background(), " ")
	assert.Error(t, err, "Open should reject an empty path")
}

func TestGetSetParams(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	got, err := store.GetParams(ctx, []string{"superset.url"})
	require.NoError(t, err)
	assert.Empty(t, got, "A fresh store should be empty")

	require.NoError(t, store.SetParams(ctx, map[string]string{
		"superset.url":      "https://superset.example.com",
		"superset.username": "admin",
	}))
	require.NoError(t, store.SetParams(ctx, map[string]string{
		"superset.username": "embedder",
	}))

	got, err = store.GetParams(ctx, []string{"superset.url", "superset.username", "superset.password"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"superset.url":      "https://superset.example.com",
		"superset.username": "embedder",
	}, got)

	got, err = store.GetParams(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReopenKeepsValues(t *testing.T) {
	store, path := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetParams(ctx, map[string]string{"superset.timeout": "45"}))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err, "Migrations should be idempotent on reopen")
	defer reopened.Close()

	got, err := reopened.GetParams(ctx, []string{"superset.timeout"})
	require.NoError(t, err)
	assert.Equal(t, "45", got["superset.timeout"])
}
