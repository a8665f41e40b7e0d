package reservations

import (
	"context"
	"fmt"
	"time"

	"github.com/example/tablebook/internal/db"
	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/google/uuid"
)

// Repo is the Postgres Store. Day locks are transaction-scoped advisory locks.
type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

const selectCols = `id::text, restaurant_id::text, reference, reservation_date, reservation_minute, guests,
table_kind, table_id, table_name, table_seats, status, pending_expires_at,
customer_name, customer_email, customer_phone, comment, version, created_at, updated_at`

func (r *Repo) ListDay(ctx context.Context, restaurantID string, day reservation.Date) ([]reservation.Reservation, error) {
	return listDay(ctx, r.db, restaurantID, day)
}

func (r *Repo) Get(ctx context.Context, restaurantID, id string) (reservation.Reservation, error) {
	return get(ctx, r.db, restaurantID, id)
}

func (r *Repo) Locked(ctx context.Context, restaurantID string, days []reservation.Date, fn func(tx Tx) error) error {
	return r.db.InTx(ctx, func(q db.Querier) error {
		// shared with other day writers, exclusive against LockedRestaurant
		if err := q.Exec(ctx, `SELECT pg_advisory_xact_lock_shared(hashtextextended($1, 0))`, restaurantID); err != nil {
			return fmt.Errorf("lock restaurant %s: %w", restaurantID, err)
		}
		for _, k := range lockKeys(restaurantID, days) {
			if err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, k); err != nil {
				return fmt.Errorf("lock %s: %w", k, err)
			}
		}
		return fn(pgTx{q: q})
	})
}

// LockedRestaurant holds the restaurant lock exclusively while fn runs. fn's
// own statements commit before the lock is released.
func (r *Repo) LockedRestaurant(ctx context.Context, restaurantID string, fn func(ctx context.Context) error) error {
	return r.db.InTx(ctx, func(q db.Querier) error {
		if err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, restaurantID); err != nil {
			return fmt.Errorf("lock restaurant %s: %w", restaurantID, err)
		}
		return fn(ctx)
	})
}

type pgTx struct{ q db.Querier }

func (t pgTx) ListDay(ctx context.Context, restaurantID string, day reservation.Date) ([]reservation.Reservation, error) {
	return listDay(ctx, t.q, restaurantID, day)
}

func (t pgTx) Get(ctx context.Context, restaurantID, id string) (reservation.Reservation, error) {
	return get(ctx, t.q, restaurantID, id)
}

func (t pgTx) Insert(ctx context.Context, in reservation.Reservation) (reservation.Reservation, error) {
	kind, tableID, tableName, seats := flatten(in.Table)
	row := t.q.QueryRow(ctx, `
INSERT INTO reservations(id, restaurant_id, reference, reservation_date, reservation_minute, guests,
  table_kind, table_id, table_name, table_seats, status, pending_expires_at,
  customer_name, customer_email, customer_phone, comment, version, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,1,$17,$17)
RETURNING `+selectCols,
		in.ID, in.RestaurantID, in.Reference, in.Date.Time(time.UTC), int(in.Time), in.Guests,
		kind, tableID, tableName, seats, string(in.Status), in.PendingExpires,
		in.CustomerName, in.CustomerEmail, in.CustomerPhone, in.Comment, in.CreatedAt,
	)
	out, err := scanReservation(row)
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("insert reservation: %w", err)
	}
	return out, nil
}

func (t pgTx) Update(ctx context.Context, in reservation.Reservation) (reservation.Reservation, error) {
	kind, tableID, tableName, seats := flatten(in.Table)
	row := t.q.QueryRow(ctx, `
UPDATE reservations SET
  reservation_date=$3, reservation_minute=$4, guests=$5,
  table_kind=$6, table_id=$7, table_name=$8, table_seats=$9,
  status=$10, pending_expires_at=$11,
  customer_name=$12, customer_email=$13, customer_phone=$14, comment=$15,
  version=version+1, updated_at=$16
WHERE id=$1 AND restaurant_id=$2 AND version=$17
RETURNING `+selectCols,
		in.ID, in.RestaurantID, in.Date.Time(time.UTC), int(in.Time), in.Guests,
		kind, tableID, tableName, seats, string(in.Status), in.PendingExpires,
		in.CustomerName, in.CustomerEmail, in.CustomerPhone, in.Comment, in.UpdatedAt, in.Version,
	)
	out, err := scanReservation(row)
	if db.IsNotFound(err) {
		return reservation.Reservation{}, ErrVersionConflict
	}
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("update reservation: %w", err)
	}
	return out, nil
}

func listDay(ctx context.Context, q db.Querier, restaurantID string, day reservation.Date) ([]reservation.Reservation, error) {
	if _, err := uuid.Parse(restaurantID); err != nil {
		return nil, nil
	}
	rows, err := q.Query(ctx, `
SELECT `+selectCols+`
FROM reservations
WHERE restaurant_id=$1 AND reservation_date=$2
ORDER BY reservation_minute, created_at, id`, restaurantID, day.Time(time.UTC))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []reservation.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func get(ctx context.Context, q db.Querier, restaurantID, id string) (reservation.Reservation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return reservation.Reservation{}, ErrNotFound
	}
	r, err := scanReservation(q.QueryRow(ctx, `
SELECT `+selectCols+`
FROM reservations
WHERE id=$1 AND restaurant_id=$2`, id, restaurantID))
	if db.IsNotFound(err) {
		return reservation.Reservation{}, ErrNotFound
	}
	return r, err
}

// flatten maps a TableRef to nullable columns.
func flatten(t reservation.TableRef) (kind, tableID, name *string, seats *int) {
	k, id, n, s := reservation.FlattenTableRef(t)
	if k == "" {
		return nil, nil, nil, nil
	}
	kind, name, seats = &k, &n, &s
	if id != "" {
		tableID = &id
	}
	return kind, tableID, name, seats
}

func scanReservation(row db.Row) (reservation.Reservation, error) {
	var r reservation.Reservation
	var day time.Time
	var minute int
	var kind, tableID, tableName *string
	var seats *int
	var status string
	if err := row.Scan(
		&r.ID, &r.RestaurantID, &r.Reference, &day, &minute, &r.Guests,
		&kind, &tableID, &tableName, &seats, &status, &r.PendingExpires,
		&r.CustomerName, &r.CustomerEmail, &r.CustomerPhone, &r.Comment, &r.Version, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return reservation.Reservation{}, db.WrapNotFound(err)
	}
	r.Date = reservation.DateOf(day)
	r.Time = reservation.TimeOfDay(minute)
	r.Status = reservation.Status(status)

	table, err := reservation.NewTableRef(deref(kind), deref(tableID), deref(tableName), derefInt(seats))
	if err != nil {
		return reservation.Reservation{}, fmt.Errorf("reservation %s: %w", r.ID, err)
	}
	r.Table = table
	return r, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
