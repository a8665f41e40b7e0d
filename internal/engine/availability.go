package engine

import (
	"time"

	"github.com/example/tablebook/internal/domain/reservation"
)

// Snapshot is the state one availability or allocation decision is made on.
type Snapshot struct {
	Parameters   reservation.Parameters
	OpeningHours reservation.WeekSchedule
	// Reservations of the queried day. Entries for other dates are ignored.
	Reservations []reservation.Reservation
}

// Query describes a party looking for a table.
type Query struct {
	Date   reservation.Date
	Guests int
	// Exclude is the id of the reservation being edited; it never blocks itself.
	Exclude string
	// Now is compared against pending expiries and used for the "today" cut-off.
	Now time.Time
}

// usage is the capacity consumed at one slot within one size class.
type usage struct {
	reserved  map[string]bool
	anonymous int
}

func (u usage) used() int { return len(u.reserved) + u.anonymous }

// AvailableSlots lists the times on q.Date a party of q.Guests can still book.
func AvailableSlots(s Snapshot, q Query) []reservation.TimeOfDay {
	p := s.Parameters
	candidates := CandidateSlots(q.Date, p.ScheduleFor(q.Date.Weekday(), s.OpeningHours), p.Interval, q.Now)
	if !p.ManageDisponibilities {
		return candidates
	}

	size := RequiredTableSize(q.Guests)
	pool := EligibleTables(p.Tables, size)
	if len(pool) == 0 {
		return nil
	}
	blocking := blockingReservations(s.Reservations, q)

	var out []reservation.TimeOfDay
	for _, t := range candidates {
		if consumed(p, pool, size, blocking, t).used() < len(pool) {
			out = append(out, t)
		}
	}
	return out
}

// AvailableTables lists the eligible tables not claimed at time at on q.Date.
// When unattributed claims alone fill the pool nothing is returned.
func AvailableTables(s Snapshot, q Query, at reservation.TimeOfDay) []reservation.Table {
	p := s.Parameters
	size := RequiredTableSize(q.Guests)
	pool := EligibleTables(p.Tables, size)
	if len(pool) == 0 {
		return nil
	}

	u := consumed(p, pool, size, blockingReservations(s.Reservations, q), at)
	if u.used() >= len(pool) {
		return nil
	}
	out := make([]reservation.Table, 0, len(pool)-len(u.reserved))
	for _, t := range pool {
		if !u.reserved[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func blockingReservations(all []reservation.Reservation, q Query) []reservation.Reservation {
	var out []reservation.Reservation
	for _, r := range all {
		if r.Date != q.Date {
			continue
		}
		if q.Exclude != "" && r.ID == q.Exclude {
			continue
		}
		if IsBlocking(r, q.Now) {
			out = append(out, r)
		}
	}
	return out
}

// consumed folds the blocking reservations overlapping a booking at t into
// claimed table ids plus anonymous units for the given size class.
func consumed(p reservation.Parameters, pool []reservation.Table, size int, blocking []reservation.Reservation, t reservation.TimeOfDay) usage {
	u := usage{reserved: make(map[string]bool)}
	candidate := BookingAt(p, t)
	for _, r := range blocking {
		if !Overlaps(candidate, BookingAt(p, r.Time)) {
			continue
		}
		switch ref := r.Table.(type) {
		case reservation.Configured:
			if inPool(pool, ref.TableID) {
				u.reserved[ref.TableID] = true
			} else if id, ok := matchByName(pool, ref.Name); ok {
				u.reserved[id] = true
			} else if ref.Seats == size {
				u.anonymous++
			}
		case reservation.Manual:
			if ref.Seats == size {
				u.anonymous++
			}
		}
	}
	return u
}

func inPool(pool []reservation.Table, id string) bool {
	for _, t := range pool {
		if t.ID == id {
			return true
		}
	}
	return false
}

// matchByName resolves a stale reference to a recreated table of the same name.
func matchByName(pool []reservation.Table, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for _, t := range pool {
		if reservation.SameName(t.Name, name) {
			return t.ID, true
		}
	}
	return "", false
}
