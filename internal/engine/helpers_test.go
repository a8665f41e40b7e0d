package engine

import (
	"time"

	"github.com/example/tablebook/internal/domain/reservation"
)

var (
	testDay = reservation.Date{Year: 2026, Month: time.October, Day: 16}
	// the day before testDay, so the "today" cut-off never applies
	testNow = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)
)

func at(h, m int) reservation.TimeOfDay { return reservation.Clock(h, m) }

func openAllWeek(ranges ...reservation.HourRange) reservation.WeekSchedule {
	var w reservation.WeekSchedule
	for i := range w {
		w[i] = reservation.DaySchedule{Ranges: ranges}
	}
	return w
}

func params(tables ...reservation.Table) reservation.Parameters {
	return reservation.Parameters{
		Tables: tables,
		ReservationHours: openAllWeek(
			reservation.HourRange{Open: at(12, 0), Close: at(14, 0)},
			reservation.HourRange{Open: at(19, 0), Close: at(22, 0)},
		),
		Interval:               15,
		ManageDisponibilities:  true,
		OccupancyLunchMinutes:  60,
		OccupancyDinnerMinutes: 90,
	}
}

func booked(id string, t reservation.TimeOfDay, guests int, table reservation.TableRef) reservation.Reservation {
	return reservation.Reservation{
		ID:     id,
		Date:   testDay,
		Time:   t,
		Guests: guests,
		Table:  table,
		Status: reservation.StatusConfirmed,
	}
}

func table(id, name string, seats int) reservation.Table {
	return reservation.Table{ID: id, Name: name, Seats: seats}
}

func query(guests int) Query {
	return Query{Date: testDay, Guests: guests, Now: testNow}
}

func contains(slots []reservation.TimeOfDay, t reservation.TimeOfDay) bool {
	for _, s := range slots {
		if s == t {
			return true
		}
	}
	return false
}

func tableIDs(ts []reservation.Table) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}
