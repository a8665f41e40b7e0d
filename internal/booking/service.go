// Package booking composes the engine with persistence. Previews read without
// locks and may be cached; creates and edits re-read and decide inside the
// store's day lock so the committed state never exceeds table capacity.
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/engine"
	"github.com/example/tablebook/internal/notify"
	"github.com/example/tablebook/internal/reservations"
	"github.com/example/tablebook/internal/restaurants"
)

type Service struct {
	restaurants restaurants.Repository
	store       reservations.Store
	cache       Cache
	notifier    notify.Notifier
	clock       Clock
	log         *slog.Logger

	pendingHold time.Duration
	cacheTTL    time.Duration
	newRef      func() (string, error)
}

type Deps struct {
	Restaurants restaurants.Repository
	Store       reservations.Store
	// optional
	Cache    Cache
	Notifier notify.Notifier
	Clock    Clock
	Log      *slog.Logger

	PendingHold time.Duration
	CacheTTL    time.Duration
}

func NewService(d Deps) *Service {
	s := &Service{
		restaurants: d.Restaurants,
		store:       d.Store,
		cache:       d.Cache,
		notifier:    d.Notifier,
		clock:       d.Clock,
		log:         d.Log,
		pendingHold: d.PendingHold,
		cacheTTL:    d.CacheTTL,
		newRef:      newReference,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.cache == nil {
		s.cache = NopCache{}
	}
	if s.notifier == nil {
		s.notifier = notify.Log{Logger: s.log}
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	return s
}

// now is the current instant in the restaurant's zone, so its calendar date
// and minute line up with reservation dates and times.
func (s *Service) now(r restaurants.Restaurant) time.Time {
	return s.clock.Now().In(r.Location())
}

func (s *Service) restaurant(ctx context.Context, slug string) (restaurants.Restaurant, error) {
	r, err := s.restaurants.GetBySlug(ctx, slug)
	if err != nil {
		return restaurants.Restaurant{}, fmt.Errorf("restaurant %q: %w", slug, err)
	}
	return r, nil
}

func snapshot(r restaurants.Restaurant, rs []reservation.Reservation) engine.Snapshot {
	return engine.Snapshot{Parameters: r.Parameters, OpeningHours: r.OpeningHours, Reservations: rs}
}

type SlotQuery struct {
	Date    reservation.Date
	Guests  int
	Exclude string
	// Prefer lists wanted times in priority order; Near asks for the closest
	// bookable time. Both only shape Suggested.
	Prefer []reservation.TimeOfDay
	Near   *reservation.TimeOfDay
}

type SlotsResult struct {
	Date      reservation.Date        `json:"date"`
	Guests    int                     `json:"guests"`
	TableSize int                     `json:"tableSize"`
	Slots     []reservation.TimeOfDay `json:"slots"`
	Suggested *reservation.TimeOfDay  `json:"suggested,omitempty"`
}

// AvailableSlots is the advisory slot preview. Past dates have no slots.
func (s *Service) AvailableSlots(ctx context.Context, slug string, q SlotQuery) (SlotsResult, error) {
	if err := validateParty(q.Date, q.Guests); err != nil {
		return SlotsResult{}, err
	}
	r, err := s.restaurant(ctx, slug)
	if err != nil {
		return SlotsResult{}, err
	}
	now := s.now(r)
	out := SlotsResult{Date: q.Date, Guests: q.Guests, TableSize: engine.RequiredTableSize(q.Guests), Slots: []reservation.TimeOfDay{}}
	if q.Date.Before(reservation.DateOf(now)) {
		return out, nil
	}

	slots, err := s.slots(ctx, r, q, now)
	if err != nil {
		return SlotsResult{}, err
	}
	if slots != nil {
		out.Slots = slots
	}
	out.Suggested = suggest(q, out.Slots)
	return out, nil
}

func suggest(q SlotQuery, slots []reservation.TimeOfDay) *reservation.TimeOfDay {
	if len(q.Prefer) > 0 {
		if t, ok := reservation.ChooseSlot(q.Prefer, slots); ok {
			return &t
		}
	}
	if q.Near != nil {
		if t, ok := reservation.NearestSlot(*q.Near, slots); ok {
			return &t
		}
		return nil
	}
	if len(q.Prefer) > 0 {
		return nil
	}
	if t, ok := reservation.ChooseSlot(nil, slots); ok {
		return &t
	}
	return nil
}

func (s *Service) slots(ctx context.Context, r restaurants.Restaurant, q SlotQuery, now time.Time) ([]reservation.TimeOfDay, error) {
	// previews for an edit exclude one reservation and are not shared
	cacheable := s.cacheTTL > 0 && q.Exclude == ""

	var key string
	if cacheable {
		gen, err := s.cache.Generation(ctx, r.ID, q.Date)
		if err != nil {
			s.log.Warn("booking:cache:generation_failed", "component", "booking", "restaurant_id", r.ID, "err", err)
			cacheable = false
		} else {
			key = slotsKey(r.ID, r.UpdatedAt.UnixNano(), q.Date, gen, engine.RequiredTableSize(q.Guests))
			if b, ok, err := s.cache.Get(ctx, key); err != nil {
				s.log.Warn("booking:cache:get_failed", "component", "booking", "key", key, "err", err)
			} else if ok {
				var slots []reservation.TimeOfDay
				if err := json.Unmarshal(b, &slots); err == nil {
					return slots, nil
				}
			}
		}
	}

	rs, err := s.store.ListDay(ctx, r.ID, q.Date)
	if err != nil {
		return nil, err
	}
	slots := engine.AvailableSlots(snapshot(r, rs), engine.Query{Date: q.Date, Guests: q.Guests, Exclude: q.Exclude, Now: now})

	if cacheable {
		if ttl := previewTTL(s.cacheTTL, now, q.Date, rs); ttl > 0 {
			b, _ := json.Marshal(slots)
			if err := s.cache.Set(ctx, key, b, ttl); err != nil {
				s.log.Warn("booking:cache:set_failed", "component", "booking", "key", key, "err", err)
			}
		}
	}
	return slots, nil
}

type TableQuery struct {
	Date    reservation.Date
	Time    reservation.TimeOfDay
	Guests  int
	Exclude string
}

// AvailableTables is the advisory preview of free tables for one slot.
func (s *Service) AvailableTables(ctx context.Context, slug string, q TableQuery) ([]reservation.Table, error) {
	if err := validateParty(q.Date, q.Guests); err != nil {
		return nil, err
	}
	if !q.Time.Valid() {
		return nil, invalid("reservationTime", "out of range")
	}
	r, err := s.restaurant(ctx, slug)
	if err != nil {
		return nil, err
	}
	rs, err := s.store.ListDay(ctx, r.ID, q.Date)
	if err != nil {
		return nil, err
	}
	tables := engine.AvailableTables(snapshot(r, rs), engine.Query{Date: q.Date, Guests: q.Guests, Exclude: q.Exclude, Now: s.now(r)}, q.Time)
	if tables == nil {
		tables = []reservation.Table{}
	}
	return tables, nil
}

// ListDay returns a day's reservations in time order.
func (s *Service) ListDay(ctx context.Context, slug string, day reservation.Date) ([]reservation.Reservation, error) {
	if day.IsZero() {
		return nil, invalid("date", "required")
	}
	r, err := s.restaurant(ctx, slug)
	if err != nil {
		return nil, err
	}
	rs, err := s.store.ListDay(ctx, r.ID, day)
	if err != nil {
		return nil, err
	}
	if rs == nil {
		rs = []reservation.Reservation{}
	}
	return rs, nil
}

func (s *Service) Parameters(ctx context.Context, slug string) (reservation.Parameters, error) {
	r, err := s.restaurant(ctx, slug)
	if err != nil {
		return reservation.Parameters{}, err
	}
	return r.Parameters, nil
}

// PutParameters replaces a restaurant's table configuration. Existing
// reservations keep their table references; stale ones resolve by name.
func (s *Service) PutParameters(ctx context.Context, slug string, p reservation.Parameters) (reservation.Parameters, error) {
	if err := p.Validate(); err != nil {
		return reservation.Parameters{}, &ValidationError{Field: "parameters", Message: err.Error()}
	}
	r, err := s.restaurant(ctx, slug)
	if err != nil {
		return reservation.Parameters{}, err
	}
	var updated restaurants.Restaurant
	err = s.store.LockedRestaurant(ctx, r.ID, func(ctx context.Context) error {
		var err error
		updated, err = s.restaurants.UpdateParameters(ctx, r.ID, p)
		return err
	})
	if err != nil {
		return reservation.Parameters{}, err
	}
	s.log.Info("booking:parameters:updated", "component", "booking", "restaurant_id", r.ID, "tables", len(p.Tables))
	return updated.Parameters, nil
}

func validateParty(day reservation.Date, guests int) error {
	if day.IsZero() {
		return invalid("reservationDate", "required")
	}
	if guests < 1 {
		return invalid("numberOfGuests", "must be at least 1")
	}
	return nil
}
