package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend keeps every document as a JSON file under a data directory:
// parking-lots.json, users.json and pdata/p<lotID>-sessions.json.
type FileBackend struct {
	dir string
}

// NewFileBackend prepares dir and returns backend.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("storage: data dir is empty")
	}
	if err := os.MkdirAll(filepath.Join(dir, "pdata"), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// Read returns file contents, nil when the file does not exist.
func (b *FileBackend) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := b.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Write replaces the file atomically via a temp file in the same directory.
func (b *FileBackend) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := b.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (b *FileBackend) path(key string) (string, error) {
	switch key {
	case lotsKey:
		return filepath.Join(b.dir, "parking-lots.json"), nil
	case usersKey:
		return filepath.Join(b.dir, "users.json"), nil
	}
	if lotID, ok := lotIDFromKey(key); ok {
		return filepath.Join(b.dir, "pdata", fmt.Sprintf("p%s-sessions.json", lotID)), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
}
