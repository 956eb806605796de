package cart

import (
	"context"
	"sync"
)

// Store menyimpan cart per session. Replace selalu mengganti seluruh isi cart.
type Store interface {
	Get(ctx context.Context, sessionID string) ([]Item, error)
	Replace(ctx context.Context, sessionID string, items []Item) error
	Clear(ctx context.Context, sessionID string) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string][]Item{}}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.carts[sessionID]
	out := make([]Item, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemoryStore) Replace(_ context.Context, sessionID string, items []Item) error {
	cp := make([]Item, len(items))
	copy(cp, items)
	s.mu.Lock()
	s.carts[sessionID] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.carts, sessionID)
	s.mu.Unlock()
	return nil
}
