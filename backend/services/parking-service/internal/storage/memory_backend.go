package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps documents in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

// Read returns a copy of the stored document.
func (b *MemoryBackend) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.docs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

// Write stores a copy of data.
func (b *MemoryBackend) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[key] = append([]byte(nil), data...)
	return nil
}
