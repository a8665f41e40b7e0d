// Package reservations persists reservations. Writes go through Locked, which
// serialises writers per (restaurant, day) so that a capacity check and the
// write that depends on it cannot interleave with another writer.
package reservations

import (
	"context"
	"errors"
	"sort"

	"github.com/example/tablebook/internal/domain/reservation"
)

var (
	ErrNotFound        = errors.New("reservation not found")
	ErrVersionConflict = errors.New("reservation was modified concurrently")
)

// Reader is the unlocked read side used by availability previews.
type Reader interface {
	ListDay(ctx context.Context, restaurantID string, day reservation.Date) ([]reservation.Reservation, error)
	Get(ctx context.Context, restaurantID, id string) (reservation.Reservation, error)
}

// Tx is the view of the store inside Locked.
type Tx interface {
	Reader
	Insert(ctx context.Context, r reservation.Reservation) (reservation.Reservation, error)
	// Update writes r if the stored version still equals r.Version and
	// returns the row with the version incremented.
	Update(ctx context.Context, r reservation.Reservation) (reservation.Reservation, error)
}

type Store interface {
	Reader
	// Locked runs fn atomically while holding the write locks of every listed day.
	Locked(ctx context.Context, restaurantID string, days []reservation.Date, fn func(tx Tx) error) error
	// LockedRestaurant runs fn while no Locked call for the restaurant is in
	// progress. Restaurant configuration is replaced under it.
	LockedRestaurant(ctx context.Context, restaurantID string, fn func(ctx context.Context) error) error
}

// lockKeys returns one key per distinct day in a fixed order, so writers
// touching two days always acquire them in the same sequence.
func lockKeys(restaurantID string, days []reservation.Date) []string {
	seen := make(map[string]bool, len(days))
	var keys []string
	for _, d := range days {
		k := restaurantID + ":" + d.String()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func sortDay(rs []reservation.Reservation) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Time != rs[j].Time {
			return rs[i].Time < rs[j].Time
		}
		if !rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].CreatedAt.Before(rs[j].CreatedAt)
		}
		return rs[i].ID < rs[j].ID
	})
}
