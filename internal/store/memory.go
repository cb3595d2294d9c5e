package store

import (
	"context"
	"sync"

	"github.com/serroba/redirect-gateway/internal/gateway"
)

// MemoryStore is an in-memory implementation of gateway.Repository.
type MemoryStore struct {
	mu    sync.RWMutex
	links map[gateway.Token]gateway.Link
}

// NewMemoryStore creates a new in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links: make(map[gateway.Token]gateway.Link),
	}
}

func (m *MemoryStore) Put(_ context.Context, link *gateway.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.links[link.Token] = *link

	return nil
}

func (m *MemoryStore) Get(_ context.Context, token gateway.Token) (*gateway.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[token]
	if !ok {
		return nil, gateway.ErrNotFound
	}

	return &link, nil
}

func (m *MemoryStore) Delete(_ context.Context, token gateway.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.links, token)

	return nil
}

func (m *MemoryStore) Take(_ context.Context, token gateway.Token) (*gateway.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[token]
	if !ok {
		return nil, gateway.ErrNotFound
	}

	delete(m.links, token)

	return &link, nil
}

// Len returns the number of stored tokens.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.links)
}

var _ gateway.Repository = (*MemoryStore)(nil)
