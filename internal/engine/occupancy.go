package engine

import "github.com/example/tablebook/internal/domain/reservation"

// Bucket is the service a time of day belongs to.
type Bucket int

const (
	Lunch Bucket = iota
	Dinner
)

func (b Bucket) String() string {
	if b == Lunch {
		return "lunch"
	}
	return "dinner"
}

// dinnerFromHour is fixed; it is not part of restaurant configuration.
const dinnerFromHour = 16

func BucketOf(t reservation.TimeOfDay) Bucket {
	if t.Hour() < dinnerFromHour {
		return Lunch
	}
	return Dinner
}

// OccupancyMinutes is how long a table stays taken by a booking starting at t.
// Zero means "not configured" and switches overlap checks to exact-time matching.
func OccupancyMinutes(p reservation.Parameters, t reservation.TimeOfDay) int {
	m := p.OccupancyDinnerMinutes
	if BucketOf(t) == Lunch {
		m = p.OccupancyLunchMinutes
	}
	if m < 0 {
		return 0
	}
	return m
}
