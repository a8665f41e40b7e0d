package reservation

import (
	"fmt"
	"time"
)

// HourRange is one opening range within a day.
type HourRange struct {
	Open  TimeOfDay `json:"open"`
	Close TimeOfDay `json:"close"`
}

// DaySchedule is either closed or a list of ordered, non-overlapping ranges.
type DaySchedule struct {
	Closed bool        `json:"closed"`
	Ranges []HourRange `json:"ranges,omitempty"`
}

// WeekSchedule is indexed by time.Weekday (0 = Sunday).
type WeekSchedule [7]DaySchedule

// Parameters is the restaurant-wide table configuration read by the engine.
type Parameters struct {
	Tables                 []Table      `json:"tables"`
	SameHoursAsRestaurant  bool         `json:"same_hours_as_restaurant"`
	ReservationHours       WeekSchedule `json:"reservation_hours"`
	Interval               int          `json:"interval"`
	ManageDisponibilities  bool         `json:"manage_disponibilities"`
	OccupancyLunchMinutes  int          `json:"table_occupancy_lunch_minutes"`
	OccupancyDinnerMinutes int          `json:"table_occupancy_dinner_minutes"`
}

// ScheduleFor resolves the reservation schedule for a weekday.
func (p Parameters) ScheduleFor(day time.Weekday, openingHours WeekSchedule) DaySchedule {
	if p.SameHoursAsRestaurant {
		return openingHours[day]
	}
	return p.ReservationHours[day]
}

// Validate rejects configurations the engine cannot reason about.
func (p Parameters) Validate() error {
	if p.Interval <= 0 {
		return fmt.Errorf("interval must be > 0")
	}
	if p.OccupancyLunchMinutes < 0 || p.OccupancyDinnerMinutes < 0 {
		return fmt.Errorf("occupancy minutes must be >= 0")
	}
	seen := make(map[string]bool, len(p.Tables))
	for _, t := range p.Tables {
		if t.ID == "" {
			return fmt.Errorf("table id required")
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate table id %q", t.ID)
		}
		seen[t.ID] = true
		if t.Seats <= 0 {
			return fmt.Errorf("table %q: seats must be > 0", t.ID)
		}
	}
	if !p.SameHoursAsRestaurant {
		if err := p.ReservationHours.Validate(); err != nil {
			return fmt.Errorf("reservation_hours: %w", err)
		}
	}
	return nil
}

func (w WeekSchedule) Validate() error {
	for i, d := range w {
		if d.Closed {
			continue
		}
		for _, r := range d.Ranges {
			if !r.Open.Valid() || r.Close < 0 || r.Close > MinutesPerDay {
				return fmt.Errorf("%s: range out of day", time.Weekday(i))
			}
			if r.Close <= r.Open {
				return fmt.Errorf("%s: close %s must be after open %s", time.Weekday(i), r.Close, r.Open)
			}
		}
	}
	return nil
}
