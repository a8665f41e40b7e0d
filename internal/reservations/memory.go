package reservations

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/tablebook/internal/domain/reservation"
)

// Memory is an in-process Store. Locked takes a single write lock, so writers
// are serialised across all days; readers see only committed state.
type Memory struct {
	mu   sync.RWMutex
	rows map[string]reservation.Reservation
}

func NewMemory() *Memory {
	return &Memory{rows: make(map[string]reservation.Reservation)}
}

func (m *Memory) ListDay(_ context.Context, restaurantID string, day reservation.Date) ([]reservation.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return listMemory(m.rows, nil, restaurantID, day), nil
}

func (m *Memory) Get(_ context.Context, restaurantID, id string) (reservation.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return getMemory(m.rows, nil, restaurantID, id)
}

func (m *Memory) Locked(ctx context.Context, restaurantID string, days []reservation.Date, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{rows: m.rows, staged: make(map[string]reservation.Reservation)}
	if err := fn(tx); err != nil {
		return err
	}
	for id, r := range tx.staged {
		m.rows[id] = r
	}
	return nil
}

func (m *Memory) LockedRestaurant(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// memTx overlays staged writes on the committed rows until fn returns.
type memTx struct {
	rows   map[string]reservation.Reservation
	staged map[string]reservation.Reservation
}

func (t *memTx) ListDay(_ context.Context, restaurantID string, day reservation.Date) ([]reservation.Reservation, error) {
	return listMemory(t.rows, t.staged, restaurantID, day), nil
}

func (t *memTx) Get(_ context.Context, restaurantID, id string) (reservation.Reservation, error) {
	return getMemory(t.rows, t.staged, restaurantID, id)
}

func (t *memTx) Insert(_ context.Context, r reservation.Reservation) (reservation.Reservation, error) {
	if _, ok := t.lookup(r.ID); ok {
		return reservation.Reservation{}, fmt.Errorf("insert reservation: duplicate id %s", r.ID)
	}
	for _, existing := range t.all() {
		if existing.Reference == r.Reference {
			return reservation.Reservation{}, fmt.Errorf("insert reservation: duplicate reference %s", r.Reference)
		}
	}
	r.Version = 1
	r.UpdatedAt = r.CreatedAt
	t.staged[r.ID] = r
	return r, nil
}

func (t *memTx) Update(_ context.Context, r reservation.Reservation) (reservation.Reservation, error) {
	cur, ok := t.lookup(r.ID)
	if !ok || cur.RestaurantID != r.RestaurantID || cur.Version != r.Version {
		return reservation.Reservation{}, ErrVersionConflict
	}
	r.Version = cur.Version + 1
	r.CreatedAt = cur.CreatedAt
	r.Reference = cur.Reference
	t.staged[r.ID] = r
	return r, nil
}

func (t *memTx) lookup(id string) (reservation.Reservation, bool) {
	if r, ok := t.staged[id]; ok {
		return r, true
	}
	r, ok := t.rows[id]
	return r, ok
}

func (t *memTx) all() map[string]reservation.Reservation {
	out := make(map[string]reservation.Reservation, len(t.rows)+len(t.staged))
	for id, r := range t.rows {
		out[id] = r
	}
	for id, r := range t.staged {
		out[id] = r
	}
	return out
}

func listMemory(rows, staged map[string]reservation.Reservation, restaurantID string, day reservation.Date) []reservation.Reservation {
	var out []reservation.Reservation
	add := func(r reservation.Reservation) {
		if r.RestaurantID == restaurantID && r.Date == day {
			out = append(out, r)
		}
	}
	for id, r := range rows {
		if s, ok := staged[id]; ok {
			r = s
		}
		add(r)
	}
	for id, r := range staged {
		if _, ok := rows[id]; !ok {
			add(r)
		}
	}
	sortDay(out)
	return out
}

func getMemory(rows, staged map[string]reservation.Reservation, restaurantID, id string) (reservation.Reservation, error) {
	r, ok := staged[id]
	if !ok {
		r, ok = rows[id]
	}
	if !ok || r.RestaurantID != restaurantID {
		return reservation.Reservation{}, ErrNotFound
	}
	return r, nil
}
