package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/engine"
	"github.com/example/tablebook/internal/notify"
	"github.com/example/tablebook/internal/reservations"
	"github.com/example/tablebook/internal/restaurants"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const referenceAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

func newReference() (string, error) {
	return gonanoid.Generate(referenceAlphabet, 7)
}

type Customer struct {
	Name    string
	Email   string
	Phone   string
	Comment string
}

type CreateInput struct {
	Date   reservation.Date
	Time   reservation.TimeOfDay
	Guests int
	// Table is a preferred configured table, or with table management off
	// the table to record verbatim.
	Table    reservation.TableRef
	Customer Customer
}

type CreateResult struct {
	Reservation  reservation.Reservation   `json:"reservation"`
	Table        reservation.TableRef      `json:"table"`
	Reservations []reservation.Reservation `json:"reservations"`
}

// CreateReservation books a new reservation as a pending hold.
func (s *Service) CreateReservation(ctx context.Context, slug string, in CreateInput) (CreateResult, error) {
	if err := validateParty(in.Date, in.Guests); err != nil {
		return CreateResult{}, err
	}
	r, err := s.restaurant(ctx, slug)
	if err != nil {
		return CreateResult{}, err
	}
	now := s.now(r)
	ref, err := s.newRef()
	if err != nil {
		return CreateResult{}, fmt.Errorf("reference: %w", err)
	}

	var out CreateResult
	err = s.store.Locked(ctx, r.ID, []reservation.Date{in.Date}, func(tx reservations.Tx) error {
		rest, err := s.current(ctx, r.ID)
		if err != nil {
			return err
		}
		if err := checkBookable(rest, in.Date, in.Time, now); err != nil {
			return err
		}
		day, err := tx.ListDay(ctx, r.ID, in.Date)
		if err != nil {
			return err
		}
		table, err := engine.Assign(snapshot(rest, day), engine.Draft{Date: in.Date, Time: in.Time, Guests: in.Guests, Table: in.Table}, now)
		if err != nil {
			return err
		}

		res := reservation.Reservation{
			ID:            uuid.NewString(),
			RestaurantID:  r.ID,
			Reference:     ref,
			Date:          in.Date,
			Time:          in.Time,
			Guests:        in.Guests,
			Table:         table,
			Status:        reservation.StatusPending,
			CustomerName:  strings.TrimSpace(in.Customer.Name),
			CustomerEmail: strings.TrimSpace(in.Customer.Email),
			CustomerPhone: strings.TrimSpace(in.Customer.Phone),
			Comment:       in.Customer.Comment,
			CreatedAt:     now.UTC(),
			UpdatedAt:     now.UTC(),
		}
		if s.pendingHold > 0 {
			exp := now.Add(s.pendingHold).UTC()
			res.PendingExpires = &exp
		}
		if out.Reservation, err = tx.Insert(ctx, res); err != nil {
			return err
		}
		out.Table = out.Reservation.Table
		out.Reservations, err = tx.ListDay(ctx, r.ID, in.Date)
		return err
	})
	if err != nil {
		s.logWriteError("create", r.ID, in.Date, in.Guests, err)
		return CreateResult{}, err
	}

	s.bump(ctx, r.ID, in.Date)
	s.log.Info("booking:create:ok",
		"component", "booking",
		"restaurant_id", r.ID,
		"reservation_id", out.Reservation.ID,
		"date", in.Date.String(),
		"time", in.Time.String(),
		"guests", in.Guests,
		"table", tableName(out.Table),
	)
	return out, nil
}

type UpdateInput struct {
	// Nil slot fields keep the stored values. When all three are nil the
	// table reference is never re-derived.
	Date   *reservation.Date
	Time   *reservation.TimeOfDay
	Guests *int
	// Table requests a specific table; nil keeps the current one.
	Table  reservation.TableRef
	Status *reservation.Status

	CustomerName  *string
	CustomerEmail *string
	CustomerPhone *string
	Comment       *string

	// Version, when non-zero, must match the stored version.
	Version int
}

type TableChange struct {
	OldTableName string `json:"oldTableName"`
	NewTableName string `json:"newTableName"`
}

type UpdateResult struct {
	Reservation     reservation.Reservation   `json:"reservation"`
	Table           reservation.TableRef      `json:"table"`
	Reservations    []reservation.Reservation `json:"reservations"`
	TableReassigned bool                      `json:"tableReassigned"`
	TableChange     *TableChange              `json:"tableChange,omitempty"`
}

// UpdateReservation edits a reservation, re-resolving its table only when the
// slot, party size or blocking status changes.
func (s *Service) UpdateReservation(ctx context.Context, slug, id string, in UpdateInput) (UpdateResult, error) {
	if in.Guests != nil && *in.Guests < 1 {
		return UpdateResult{}, invalid("numberOfGuests", "must be at least 1")
	}
	if in.Date != nil && in.Date.IsZero() {
		return UpdateResult{}, invalid("reservationDate", "required")
	}
	r, err := s.restaurant(ctx, slug)
	if err != nil {
		return UpdateResult{}, err
	}
	// the stored day is needed up front to lock it alongside the target day
	before, err := s.store.Get(ctx, r.ID, id)
	if err != nil {
		return UpdateResult{}, err
	}
	target := before.Date
	if in.Date != nil {
		target = *in.Date
	}
	now := s.now(r)

	var out UpdateResult
	var notice *notify.TableChange
	err = s.store.Locked(ctx, r.ID, []reservation.Date{before.Date, target}, func(tx reservations.Tx) error {
		rest, err := s.current(ctx, r.ID)
		if err != nil {
			return err
		}
		cur, err := tx.Get(ctx, r.ID, id)
		if err != nil {
			return err
		}
		if cur.Date != before.Date || (in.Version != 0 && in.Version != cur.Version) {
			return reservations.ErrVersionConflict
		}

		next := cur
		if in.Status != nil {
			next.Status = *in.Status
		}
		if next.Status != reservation.StatusPending {
			next.PendingExpires = nil
		}

		change := engine.Change{Date: in.Date, Time: in.Time, Guests: in.Guests, Table: in.Table}
		change.Reactivate = !engine.IsBlocking(cur, now) && engine.IsBlocking(next, now)
		d := change.ApplyTo(cur)
		if d.Date != cur.Date || d.Time != cur.Time {
			if err := checkBookable(rest, d.Date, d.Time, now); err != nil {
				return err
			}
		}

		day, err := tx.ListDay(ctx, r.ID, d.Date)
		if err != nil {
			return err
		}
		ra := engine.Reassignment{Table: cur.Table}
		if in.Table != nil {
			ra.Table = in.Table
		}
		// only reservations that will hold capacity need a free table
		if engine.IsBlocking(next, now) {
			if ra, err = engine.Reassign(snapshot(rest, day), cur, change, now); err != nil {
				return err
			}
		}

		next.Date, next.Time, next.Guests, next.Table = d.Date, d.Time, d.Guests, ra.Table
		applyCustomer(&next, in)
		next.UpdatedAt = now.UTC()
		if out.Reservation, err = tx.Update(ctx, next); err != nil {
			return err
		}
		out.Table = out.Reservation.Table
		if ra.Reassigned {
			out.TableReassigned = true
			out.TableChange = &TableChange{OldTableName: ra.PreviousTableName, NewTableName: tableName(ra.Table)}
			notice = &notify.TableChange{
				RestaurantID:  r.ID,
				ReservationID: next.ID,
				Reference:     next.Reference,
				CustomerName:  next.CustomerName,
				CustomerEmail: next.CustomerEmail,
				Date:          next.Date,
				Time:          next.Time,
				OldTableName:  out.TableChange.OldTableName,
				NewTableName:  out.TableChange.NewTableName,
			}
		}
		out.Reservations, err = tx.ListDay(ctx, r.ID, d.Date)
		return err
	})
	if err != nil {
		guests := before.Guests
		if in.Guests != nil {
			guests = *in.Guests
		}
		s.logWriteError("update", r.ID, target, guests, err)
		return UpdateResult{}, err
	}

	s.bump(ctx, r.ID, before.Date)
	if target != before.Date {
		s.bump(ctx, r.ID, target)
	}
	if notice != nil {
		if err := s.notifier.TableChanged(ctx, *notice); err != nil {
			s.log.Error("booking:notify:failed", "component", "booking", "reservation_id", id, "err", err)
		}
	}
	s.log.Info("booking:update:ok",
		"component", "booking",
		"restaurant_id", r.ID,
		"reservation_id", id,
		"version", out.Reservation.Version,
		"table_reassigned", out.TableReassigned,
	)
	return out, nil
}

func applyCustomer(r *reservation.Reservation, in UpdateInput) {
	if in.CustomerName != nil {
		r.CustomerName = strings.TrimSpace(*in.CustomerName)
	}
	if in.CustomerEmail != nil {
		r.CustomerEmail = strings.TrimSpace(*in.CustomerEmail)
	}
	if in.CustomerPhone != nil {
		r.CustomerPhone = strings.TrimSpace(*in.CustomerPhone)
	}
	if in.Comment != nil {
		r.Comment = *in.Comment
	}
}

// current re-reads the restaurant inside a day lock. Parameter changes are
// serialised against day locks, so this is the configuration the write commits under.
func (s *Service) current(ctx context.Context, restaurantID string) (restaurants.Restaurant, error) {
	r, err := s.restaurants.Get(ctx, restaurantID)
	if err != nil {
		return restaurants.Restaurant{}, fmt.Errorf("restaurant %s: %w", restaurantID, err)
	}
	return r, nil
}

// checkBookable requires t to be one of the day's candidate slots.
func checkBookable(r restaurants.Restaurant, day reservation.Date, t reservation.TimeOfDay, now time.Time) error {
	if !t.Valid() {
		return invalid("reservationTime", "out of range")
	}
	if day.Before(reservation.DateOf(now)) {
		return invalid("reservationDate", "%s is in the past", day)
	}
	p := r.Parameters
	for _, c := range engine.CandidateSlots(day, p.ScheduleFor(day.Weekday(), r.OpeningHours), p.Interval, now) {
		if c == t {
			return nil
		}
	}
	return invalid("reservationTime", "%s is not a bookable time on %s", t, day)
}

func (s *Service) bump(ctx context.Context, restaurantID string, day reservation.Date) {
	if err := s.cache.Bump(ctx, restaurantID, day); err != nil {
		s.log.Warn("booking:cache:bump_failed", "component", "booking", "restaurant_id", restaurantID, "date", day.String(), "err", err)
	}
}

func (s *Service) logWriteError(op, restaurantID string, day reservation.Date, guests int, err error) {
	var ae *engine.AllocationError
	var ve *ValidationError
	switch {
	case errors.As(err, &ae):
		s.log.Info("booking:"+op+":no_table", "component", "booking", "restaurant_id", restaurantID,
			"date", day.String(), "guests", guests, "reason", string(ae.Reason))
	case errors.As(err, &ve):
		s.log.Info("booking:"+op+":invalid", "component", "booking", "restaurant_id", restaurantID, "field", ve.Field)
	case errors.Is(err, reservations.ErrVersionConflict), errors.Is(err, reservations.ErrNotFound):
		s.log.Info("booking:"+op+":rejected", "component", "booking", "restaurant_id", restaurantID, "err", err)
	default:
		s.log.Error("booking:"+op+":failed", "component", "booking", "restaurant_id", restaurantID, "err", err)
	}
}

func tableName(t reservation.TableRef) string {
	if t == nil {
		return ""
	}
	return t.DisplayName()
}
