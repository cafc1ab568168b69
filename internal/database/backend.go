package database

import (
	"context"
	"errors"
	"sync"
)

// ErrNotExist is returned by a Backend when a collection has never been written
var ErrNotExist = errors.New("collection does not exist")

// Backend persists whole collection documents as raw JSON
type Backend interface {
	Read(ctx context.Context, c Collection) ([]byte, error)
	Write(ctx context.Context, c Collection, data []byte) error
	Close() error
}

// MemoryBackend keeps documents in process memory
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[Collection][]byte
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[Collection][]byte)}
}

func (m *MemoryBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.docs[c]
	if !ok {
		return nil, ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryBackend) Write(ctx context.Context, c Collection, data []byte) error {
	m.mu.Lock()
	m.docs[c] = append([]byte(nil), data...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
