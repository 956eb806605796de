package coinremitter

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound      = errors.New("invoice not found")
	ErrAlreadyExists = errors.New("invoice already exists")
)

// Store owns invoice persistence. Update runs fn atomically per invoice:
// fn mutates a copy and the copy is saved only when fn returns nil.
type Store interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	Update(ctx context.Context, id string, fn func(inv *Invoice) error) (*Invoice, error)
}

type MemoryStore struct {
	mu       sync.Mutex
	invoices map[string]Invoice
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{invoices: map[string]Invoice{}}
}

func (s *MemoryStore) Create(_ context.Context, inv *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[inv.ID]; ok {
		return ErrAlreadyExists
	}
	s.invoices[inv.ID] = *inv
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &inv, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(inv *Invoice) error) (*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&cur); err != nil {
		return nil, err
	}
	s.invoices[id] = cur
	out := cur
	return &out, nil
}

// Len dipakai test untuk cek "tidak ada invoice tersimpan".
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invoices)
}
