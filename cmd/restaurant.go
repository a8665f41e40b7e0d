package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/tablebook/internal/config"
	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/restaurants"
	"github.com/spf13/cobra"
)

func newRestaurantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restaurant",
		Short: "Manage restaurants",
	}
	cmd.AddCommand(newRestaurantAddCmd())
	return cmd
}

// restaurantFile is the JSON document read by `restaurant add --config`.
type restaurantFile struct {
	OpeningHours reservation.WeekSchedule `json:"opening_hours"`
	Parameters   reservation.Parameters   `json:"parameters"`
}

func newRestaurantAddCmd() *cobra.Command {
	var name, timezone, path string

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a restaurant from a JSON file of opening hours and table parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			var f restaurantFile
			if err := json.Unmarshal(b, &f); err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			in, err := restaurants.New(name, timezone, f.OpeningHours, f.Parameters)
			if err != nil {
				return err
			}

			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			d, err := openDB(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer d.Close()

			r, err := restaurants.NewRepo(d).Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created restaurant id=%s slug=%s tables=%d\n", r.ID, r.Slug, len(r.Parameters.Tables))
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "restaurant name")
	c.Flags().StringVar(&timezone, "timezone", "UTC", "IANA timezone of the restaurant")
	c.Flags().StringVar(&path, "config", "", "JSON file with opening_hours and parameters")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("config")
	return c
}
