package engine

import (
	"sort"
	"time"

	"github.com/example/tablebook/internal/domain/reservation"
)

// RequiredTableSize rounds guests up to the next even seat count. Tables are
// provisioned in pairs of seats, so a party of 3 takes a 4-seat table.
func RequiredTableSize(guests int) int {
	if guests <= 0 {
		return 0
	}
	if guests%2 == 1 {
		return guests + 1
	}
	return guests
}

// EligibleTables returns the configured tables with exactly size seats,
// ordered by table id. That order is the assignment tie-break.
func EligibleTables(tables []reservation.Table, size int) []reservation.Table {
	if size <= 0 {
		return nil
	}
	var out []reservation.Table
	for _, t := range tables {
		if t.Seats == size {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsBlocking reports whether r currently counts against table capacity.
// A pending hold without an expiry timestamp keeps blocking.
func IsBlocking(r reservation.Reservation, now time.Time) bool {
	switch r.Status {
	case reservation.StatusConfirmed, reservation.StatusActive, reservation.StatusLate:
		return true
	case reservation.StatusPending:
		return r.PendingExpires == nil || r.PendingExpires.After(now)
	default:
		return false
	}
}
