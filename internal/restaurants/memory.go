package restaurants

import (
	"context"
	"sync"
	"time"

	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/google/uuid"
)

// MemoryRepo keeps restaurants in process memory.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Restaurant
	now  func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Restaurant), now: time.Now}
}

func (m *MemoryRepo) Create(_ context.Context, in Restaurant) (Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.Slug == in.Slug {
			return Restaurant{}, ErrSlugExists
		}
	}
	in.ID = uuid.NewString()
	in.CreatedAt = m.now().UTC()
	in.UpdatedAt = in.CreatedAt
	m.byID[in.ID] = in
	return in, nil
}

func (m *MemoryRepo) GetBySlug(_ context.Context, slug string) (Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.byID {
		if r.Slug == slug {
			return r, nil
		}
	}
	return Restaurant{}, ErrNotFound
}

func (m *MemoryRepo) Get(_ context.Context, id string) (Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byID[id]
	if !ok {
		return Restaurant{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryRepo) UpdateParameters(_ context.Context, id string, p reservation.Parameters) (Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return Restaurant{}, ErrNotFound
	}
	r.Parameters = p
	r.UpdatedAt = m.now().UTC()
	m.byID[id] = r
	return r, nil
}
