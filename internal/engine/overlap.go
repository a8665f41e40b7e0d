package engine

import "github.com/example/tablebook/internal/domain/reservation"

// Booking is the window a reservation holds a table for.
type Booking struct {
	Start    reservation.TimeOfDay
	Duration int // minutes; 0 when occupancy is not configured
}

func (b Booking) End() reservation.TimeOfDay { return b.Start + reservation.TimeOfDay(b.Duration) }

// BookingAt builds the Booking for a reservation starting at t.
func BookingAt(p reservation.Parameters, t reservation.TimeOfDay) Booking {
	return Booking{Start: t, Duration: OccupancyMinutes(p, t)}
}

// Overlaps reports whether a and b hold the same table window. With both
// durations positive it is a half-open interval test; if either duration is
// zero it degrades to equal start times. The relation is symmetric.
func Overlaps(a, b Booking) bool {
	if a.Duration <= 0 || b.Duration <= 0 {
		return a.Start == b.Start
	}
	return a.Start < b.End() && a.End() > b.Start
}
