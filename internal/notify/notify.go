// Package notify hands table-change notices to the delivery side. Delivery
// itself (email, SMS) happens outside this service.
package notify

import (
	"context"
	"log/slog"

	"github.com/example/tablebook/internal/domain/reservation"
)

// TableChange tells a guest that their reservation moved to another table.
type TableChange struct {
	RestaurantID  string                `json:"restaurantId"`
	ReservationID string                `json:"reservationId"`
	Reference     string                `json:"reference"`
	CustomerName  string                `json:"customerName,omitempty"`
	CustomerEmail string                `json:"customerEmail,omitempty"`
	Date          reservation.Date      `json:"reservationDate"`
	Time          reservation.TimeOfDay `json:"reservationTime"`
	OldTableName  string                `json:"oldTableName"`
	NewTableName  string                `json:"newTableName"`
}

type Notifier interface {
	TableChanged(ctx context.Context, c TableChange) error
}

// Log records notices without delivering them. Used when no queue is configured.
type Log struct {
	Logger *slog.Logger
}

func (l Log) TableChanged(_ context.Context, c TableChange) error {
	l.Logger.Info("notify:table_changed:logged",
		"component", "notify",
		"reservation_id", c.ReservationID,
		"reference", c.Reference,
		"old_table", c.OldTableName,
		"new_table", c.NewTableName,
	)
	return nil
}
