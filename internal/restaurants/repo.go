package restaurants

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/tablebook/internal/db"
	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/google/uuid"
)

type Repo struct {
	db *db.DB
}

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

const selectCols = `id::text, slug, name, timezone, opening_hours, parameters, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, in Restaurant) (Restaurant, error) {
	in.ID = uuid.NewString()
	opening, err := json.Marshal(in.OpeningHours)
	if err != nil {
		return Restaurant{}, err
	}
	params, err := json.Marshal(in.Parameters)
	if err != nil {
		return Restaurant{}, err
	}
	row := r.db.QueryRow(ctx, `
INSERT INTO restaurants(id, slug, name, timezone, opening_hours, parameters)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING `+selectCols,
		in.ID, in.Slug, in.Name, in.Timezone, opening, params,
	)
	out, err := scanRestaurant(row)
	if db.IsUniqueViolation(err) {
		return Restaurant{}, ErrSlugExists
	}
	return out, err
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (Restaurant, error) {
	return r.getOne(ctx, `SELECT `+selectCols+` FROM restaurants WHERE slug=$1`, slug)
}

func (r *Repo) Get(ctx context.Context, id string) (Restaurant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Restaurant{}, ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+selectCols+` FROM restaurants WHERE id=$1`, id)
}

func (r *Repo) UpdateParameters(ctx context.Context, id string, p reservation.Parameters) (Restaurant, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return Restaurant{}, err
	}
	return r.getOne(ctx, `
UPDATE restaurants SET parameters=$2, updated_at=now()
WHERE id=$1
RETURNING `+selectCols, id, b)
}

func (r *Repo) getOne(ctx context.Context, sql string, args ...any) (Restaurant, error) {
	out, err := scanRestaurant(r.db.QueryRow(ctx, sql, args...))
	if db.IsNotFound(err) {
		return Restaurant{}, ErrNotFound
	}
	return out, err
}

func scanRestaurant(row db.Row) (Restaurant, error) {
	var out Restaurant
	var opening, params []byte
	if err := row.Scan(&out.ID, &out.Slug, &out.Name, &out.Timezone, &opening, &params, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return Restaurant{}, db.WrapNotFound(err)
	}
	if err := json.Unmarshal(opening, &out.OpeningHours); err != nil {
		return Restaurant{}, fmt.Errorf("restaurant %s opening_hours: %w", out.ID, err)
	}
	if err := json.Unmarshal(params, &out.Parameters); err != nil {
		return Restaurant{}, fmt.Errorf("restaurant %s parameters: %w", out.ID, err)
	}
	return out, nil
}
