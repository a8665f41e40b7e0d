package cmd

import (
	"context"

	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/restaurants"
)

// demoRestaurant is the restaurant seeded into in-memory servers: lunch and
// dinner every day except Monday, two tables of two and three of four.
func demoRestaurant() (restaurants.Restaurant, error) {
	var opening reservation.WeekSchedule
	for i := range opening {
		opening[i] = reservation.DaySchedule{Ranges: []reservation.HourRange{
			{Open: reservation.Clock(12, 0), Close: reservation.Clock(14, 30)},
			{Open: reservation.Clock(19, 0), Close: reservation.Clock(22, 30)},
		}}
	}
	opening[1] = reservation.DaySchedule{Closed: true}

	return restaurants.New("Demo Bistro", "Europe/Paris", opening, reservation.Parameters{
		Tables: []reservation.Table{
			{ID: "b1", Name: "Bar 1", Seats: 2},
			{ID: "b2", Name: "Bar 2", Seats: 2},
			{ID: "t1", Name: "Window", Seats: 4},
			{ID: "t2", Name: "Terrace", Seats: 4},
			{ID: "t3", Name: "Back room", Seats: 4},
		},
		SameHoursAsRestaurant:  true,
		Interval:               15,
		ManageDisponibilities:  true,
		OccupancyLunchMinutes:  75,
		OccupancyDinnerMinutes: 105,
	})
}

func seedDemo(ctx context.Context, repo restaurants.Repository) (restaurants.Restaurant, error) {
	in, err := demoRestaurant()
	if err != nil {
		return restaurants.Restaurant{}, err
	}
	return repo.Create(ctx, in)
}
