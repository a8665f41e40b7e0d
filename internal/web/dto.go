package web

import (
	"reflect"
	"strings"

	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tableRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=configured manual"`
	TableID string `json:"tableId" validate:"required_if=Kind configured,max=64"`
	Name    string `json:"name" validate:"required_if=Kind manual,max=100"`
	Seats   int    `json:"seats" validate:"gte=0,lte=100"`
}

func (t *tableRequest) ref() (reservation.TableRef, error) {
	if t == nil {
		return nil, nil
	}
	return reservation.NewTableRef(t.Kind, t.TableID, t.Name, t.Seats)
}

type createRequest struct {
	ReservationDate string        `json:"reservationDate" validate:"required,datetime=2006-01-02"`
	ReservationTime string        `json:"reservationTime" validate:"required"`
	NumberOfGuests  int           `json:"numberOfGuests" validate:"required,min=1,max=100"`
	Table           *tableRequest `json:"table" validate:"omitempty"`
	CustomerName    string        `json:"customerName" validate:"omitempty,max=200"`
	CustomerEmail   string        `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone   string        `json:"customerPhone" validate:"omitempty,max=40"`
	Comment         string        `json:"comment" validate:"omitempty,max=2000"`
}

func (c createRequest) input() (booking.CreateInput, error) {
	d, err := reservation.ParseDate(c.ReservationDate)
	if err != nil {
		return booking.CreateInput{}, &booking.ValidationError{Field: "reservationDate", Message: err.Error()}
	}
	t, err := reservation.ParseTimeOfDay(c.ReservationTime)
	if err != nil {
		return booking.CreateInput{}, &booking.ValidationError{Field: "reservationTime", Message: err.Error()}
	}
	table, err := c.Table.ref()
	if err != nil {
		return booking.CreateInput{}, &booking.ValidationError{Field: "table", Message: err.Error()}
	}
	return booking.CreateInput{
		Date:   d,
		Time:   t,
		Guests: c.NumberOfGuests,
		Table:  table,
		Customer: booking.Customer{
			Name:    c.CustomerName,
			Email:   c.CustomerEmail,
			Phone:   c.CustomerPhone,
			Comment: c.Comment,
		},
	}, nil
}

type updateRequest struct {
	ReservationDate *string       `json:"reservationDate" validate:"omitempty,datetime=2006-01-02"`
	ReservationTime *string       `json:"reservationTime"`
	NumberOfGuests  *int          `json:"numberOfGuests" validate:"omitempty,min=1,max=100"`
	Table           *tableRequest `json:"table" validate:"omitempty"`
	Status          *string       `json:"status" validate:"omitempty,oneof=pending confirmed active late completed cancelled"`
	CustomerName    *string       `json:"customerName" validate:"omitempty,max=200"`
	CustomerEmail   *string       `json:"customerEmail" validate:"omitempty,max=320"`
	CustomerPhone   *string       `json:"customerPhone" validate:"omitempty,max=40"`
	Comment         *string       `json:"comment" validate:"omitempty,max=2000"`
	Version         int           `json:"version" validate:"gte=0"`
}

func (u updateRequest) input() (booking.UpdateInput, error) {
	in := booking.UpdateInput{
		Guests:        u.NumberOfGuests,
		CustomerName:  u.CustomerName,
		CustomerEmail: u.CustomerEmail,
		CustomerPhone: u.CustomerPhone,
		Comment:       u.Comment,
		Version:       u.Version,
	}
	if u.ReservationDate != nil {
		d, err := reservation.ParseDate(*u.ReservationDate)
		if err != nil {
			return booking.UpdateInput{}, &booking.ValidationError{Field: "reservationDate", Message: err.Error()}
		}
		in.Date = &d
	}
	if u.ReservationTime != nil {
		t, err := reservation.ParseTimeOfDay(*u.ReservationTime)
		if err != nil {
			return booking.UpdateInput{}, &booking.ValidationError{Field: "reservationTime", Message: err.Error()}
		}
		in.Time = &t
	}
	if u.Status != nil {
		st, err := reservation.ParseStatus(*u.Status)
		if err != nil {
			return booking.UpdateInput{}, &booking.ValidationError{Field: "status", Message: err.Error()}
		}
		in.Status = &st
	}
	table, err := u.Table.ref()
	if err != nil {
		return booking.UpdateInput{}, &booking.ValidationError{Field: "table", Message: err.Error()}
	}
	in.Table = table
	return in, nil
}
