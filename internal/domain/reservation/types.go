package reservation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusActive    Status = "active"
	StatusLate      Status = "late"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusConfirmed, StatusActive, StatusLate, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Reservation is one guest booking.
type Reservation struct {
	ID           string
	RestaurantID string
	Reference    string

	Date           Date
	Time           TimeOfDay
	Guests         int
	Table          TableRef
	Status         Status
	PendingExpires *time.Time

	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Comment       string

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type reservationJSON struct {
	ID               string          `json:"id"`
	RestaurantID     string          `json:"restaurantId"`
	Reference        string          `json:"reference,omitempty"`
	ReservationDate  Date            `json:"reservationDate"`
	ReservationTime  TimeOfDay       `json:"reservationTime"`
	NumberOfGuests   int             `json:"numberOfGuests"`
	Table            json.RawMessage `json:"table"`
	Status           Status          `json:"status"`
	PendingExpiresAt *time.Time      `json:"pendingExpiresAt,omitempty"`
	CustomerName     string          `json:"customerName,omitempty"`
	CustomerEmail    string          `json:"customerEmail,omitempty"`
	CustomerPhone    string          `json:"customerPhone,omitempty"`
	Comment          string          `json:"comment,omitempty"`
	Version          int             `json:"version"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (r Reservation) MarshalJSON() ([]byte, error) {
	table := json.RawMessage("null")
	if r.Table != nil {
		b, err := json.Marshal(r.Table)
		if err != nil {
			return nil, err
		}
		table = b
	}
	return json.Marshal(reservationJSON{
		ID:               r.ID,
		RestaurantID:     r.RestaurantID,
		Reference:        r.Reference,
		ReservationDate:  r.Date,
		ReservationTime:  r.Time,
		NumberOfGuests:   r.Guests,
		Table:            table,
		Status:           r.Status,
		PendingExpiresAt: r.PendingExpires,
		CustomerName:     r.CustomerName,
		CustomerEmail:    r.CustomerEmail,
		CustomerPhone:    r.CustomerPhone,
		Comment:          r.Comment,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	})
}

func (r *Reservation) UnmarshalJSON(b []byte) error {
	var v reservationJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	table, err := DecodeTableRef(v.Table)
	if err != nil {
		return fmt.Errorf("table: %w", err)
	}
	*r = Reservation{
		ID:             v.ID,
		RestaurantID:   v.RestaurantID,
		Reference:      v.Reference,
		Date:           v.ReservationDate,
		Time:           v.ReservationTime,
		Guests:         v.NumberOfGuests,
		Table:          table,
		Status:         v.Status,
		PendingExpires: v.PendingExpiresAt,
		CustomerName:   v.CustomerName,
		CustomerEmail:  v.CustomerEmail,
		CustomerPhone:  v.CustomerPhone,
		Comment:        v.Comment,
		Version:        v.Version,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
	return nil
}
