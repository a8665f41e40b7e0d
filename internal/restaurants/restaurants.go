// Package restaurants stores restaurant rows: identity, timezone, opening hours
// and the table parameters the engine reads.
package restaurants

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	// zone data for images without /usr/share/zoneinfo
	_ "time/tzdata"

	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/gosimple/slug"
)

var (
	ErrNotFound   = errors.New("restaurant not found")
	ErrSlugExists = errors.New("restaurant slug already exists")
)

type Restaurant struct {
	ID           string                   `json:"id"`
	Slug         string                   `json:"slug"`
	Name         string                   `json:"name"`
	Timezone     string                   `json:"timezone"`
	OpeningHours reservation.WeekSchedule `json:"openingHours"`
	Parameters   reservation.Parameters   `json:"parameters"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

// Location resolves Timezone, falling back to UTC.
func (r Restaurant) Location() *time.Location {
	if loc, err := time.LoadLocation(r.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

// New validates input and derives the slug. ID is assigned by the repo.
func New(name, timezone string, opening reservation.WeekSchedule, p reservation.Parameters) (Restaurant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Restaurant{}, fmt.Errorf("name required")
	}
	s := slug.Make(name)
	if !slug.IsSlug(s) {
		return Restaurant{}, fmt.Errorf("name %q does not produce a usable slug", name)
	}
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return Restaurant{}, fmt.Errorf("invalid timezone: %w", err)
	}
	if err := opening.Validate(); err != nil {
		return Restaurant{}, fmt.Errorf("opening hours: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Restaurant{}, fmt.Errorf("parameters: %w", err)
	}
	return Restaurant{Slug: s, Name: name, Timezone: timezone, OpeningHours: opening, Parameters: p}, nil
}

// Repository is implemented by Repo (Postgres) and MemoryRepo.
type Repository interface {
	Create(ctx context.Context, r Restaurant) (Restaurant, error)
	GetBySlug(ctx context.Context, slug string) (Restaurant, error)
	Get(ctx context.Context, id string) (Restaurant, error)
	UpdateParameters(ctx context.Context, id string, p reservation.Parameters) (Restaurant, error)
}
