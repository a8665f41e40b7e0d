package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/config"
	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/reservations"
	"github.com/example/tablebook/internal/restaurants"
	"github.com/spf13/cobra"
)

func newSlotsCmd() *cobra.Command {
	var (
		slug, date, at, prefer string
		guests                 int
	)

	c := &cobra.Command{
		Use:   "slots",
		Short: "Print bookable times, or free tables with --time, for a party",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := reservation.ParseDate(date)
			if err != nil {
				return fmt.Errorf("invalid --date (want YYYY-MM-DD)")
			}
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			conn, err := openDB(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer conn.Close()

			svc := booking.NewService(booking.Deps{
				Restaurants: restaurants.NewRepo(conn),
				Store:       reservations.NewRepo(conn),
				Log:         config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat),
			})

			if at != "" {
				t, err := reservation.ParseTimeOfDay(at)
				if err != nil {
					return fmt.Errorf("invalid --time (want HH:MM)")
				}
				tables, err := svc.AvailableTables(ctx, slug, booking.TableQuery{Date: d, Time: t, Guests: guests})
				if err != nil {
					return err
				}
				for _, tb := range tables {
					fmt.Fprintf(os.Stdout, "%s\t%s\t%d seats\n", tb.ID, tb.Name, tb.Seats)
				}
				return nil
			}

			q := booking.SlotQuery{Date: d, Guests: guests}
			for _, p := range splitCSV(prefer) {
				t, err := reservation.ParseTimeOfDay(p)
				if err != nil {
					return fmt.Errorf("invalid --prefer time %q", p)
				}
				q.Prefer = append(q.Prefer, t)
			}
			res, err := svc.AvailableSlots(ctx, slug, q)
			if err != nil {
				return err
			}
			times := make([]string, len(res.Slots))
			for i, t := range res.Slots {
				times[i] = t.String()
			}
			fmt.Fprintf(os.Stdout, "date=%s guests=%d table_size=%d slots=%s\n", res.Date, res.Guests, res.TableSize, strings.Join(times, ","))
			if res.Suggested != nil {
				fmt.Fprintf(os.Stdout, "suggested=%s\n", res.Suggested)
			}
			return nil
		},
	}

	c.Flags().StringVar(&slug, "restaurant", "", "restaurant slug")
	c.Flags().StringVar(&date, "date", "", "reservation date YYYY-MM-DD")
	c.Flags().IntVar(&guests, "guests", 2, "party size")
	c.Flags().StringVar(&at, "time", "", "list free tables at this time HH:MM instead of slots")
	c.Flags().StringVar(&prefer, "prefer", "", "comma-separated preferred times, in priority order")
	_ = c.MarkFlagRequired("restaurant")
	_ = c.MarkFlagRequired("date")
	return c
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
