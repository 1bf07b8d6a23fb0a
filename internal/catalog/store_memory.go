package catalog

import (
	"context"
	"fmt"
	"sync"
)

type MemStore struct {
	mu     sync.RWMutex
	items  []Product
	byID   map[int64]int
	nextID int64
}

// NewMemStore seeds the store and starts the id counter after the highest
// seeded id, or at 1 when empty. Seed ids must be positive and unique.
func NewMemStore(seed ...Product) (*MemStore, error) {
	s := &MemStore{
		items:  make([]Product, 0, len(seed)),
		byID:   make(map[int64]int, len(seed)),
		nextID: 1,
	}

	for _, p := range seed {
		if p.ID <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidID, p.ID)
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		s.byID[p.ID] = len(s.items)
		s.items = append(s.items, p)
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}

	return s, nil
}

// NewStore returns a MemStore holding DefaultSeed.
func NewStore() *MemStore {
	s, err := NewMemStore(DefaultSeed()...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return Product{}, false, nil
	}
	return s.items[i], true, nil
}

func (s *MemStore) Create(ctx context.Context, name string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Product{ID: s.nextID, Name: name}
	s.nextID++

	s.byID[p.ID] = len(s.items)
	s.items = append(s.items, p)
	return p, nil
}

func (s *MemStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}
