package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackendLayout(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Write(ctx, "parking-sessions/7", []byte(`{}`)))
	require.NoError(t, backend.Write(ctx, lotsKey, []byte(`{}`)))
	require.NoError(t, backend.Write(ctx, usersKey, []byte(`{}`)))

	for _, name := range []string{"pdata/p7-sessions.json", "parking-lots.json", "users.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "pdata"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileBackendMissingDocument(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	data, err := backend.Read(context.Background(), "parking-sessions/3")
	assert.NoError(t, err)
	assert.Nil(t, data)
}

func TestFileBackendUnknownKey(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	err = backend.Write(context.Background(), "reservations", []byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestFileBackendCancelledContext(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, backend.Write(ctx, lotsKey, []byte(`{}`)), context.Canceled)
}

func TestNewFileBackendEmptyDir(t *testing.T) {
	_, err := NewFileBackend("")
	assert.Error(t, err)
}
