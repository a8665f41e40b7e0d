// Package engine computes bookable slots, free tables and table assignments
// over an immutable snapshot of restaurant configuration and same-day
// reservations. Every function is pure: the current time is always passed in.
package engine

import (
	"time"

	"github.com/example/tablebook/internal/domain/reservation"
)

// CandidateSlots lists the raw times of day a reservation could start on date.
// Each range emits open, open+interval, ... while t <= close-interval. Ranges are
// concatenated as given. When date is today (per now, which must already be in
// the restaurant's location) only times strictly after the current minute remain.
func CandidateSlots(date reservation.Date, day reservation.DaySchedule, interval int, now time.Time) []reservation.TimeOfDay {
	if day.Closed || interval <= 0 {
		return nil
	}
	today := reservation.DateOf(now) == date
	cur := reservation.TimeOfDayOf(now)

	var out []reservation.TimeOfDay
	for _, r := range day.Ranges {
		last := r.Close - reservation.TimeOfDay(interval)
		for t := r.Open; t <= last; t += reservation.TimeOfDay(interval) {
			if today && t <= cur {
				continue
			}
			out = append(out, t)
		}
	}
	return out
}
