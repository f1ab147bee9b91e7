package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/travel-explorer/internal/destination"
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides database access for the featured catalogue and the lookup log.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

const featuredColumns = `id, name, country, description, image, lat, lng`

// ListFeatured returns the featured destinations in display order.
func (r *Repository) ListFeatured(ctx context.Context) ([]destination.Featured, error) {
	const q = `SELECT ` + featuredColumns + ` FROM featured_destinations ORDER BY position, name`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying featured destinations: %w", err)
	}
	defer rows.Close()

	results := []destination.Featured{}
	for rows.Next() {
		var f destination.Featured
		if err := rows.Scan(&f.ID, &f.Name, &f.Country, &f.Description, &f.Image, &f.Lat, &f.Lng); err != nil {
			return nil, fmt.Errorf("scanning featured row: %w", err)
		}
		results = append(results, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating featured rows: %w", err)
	}

	return results, nil
}

// FindFeatured looks up a featured destination by name, ignoring case.
// Returns nil, nil when the city is not featured.
func (r *Repository) FindFeatured(ctx context.Context, name string) (*destination.Featured, error) {
	const q = `SELECT ` + featuredColumns + ` FROM featured_destinations WHERE lower(name) = lower($1)`

	var f destination.Featured
	err := r.q.QueryRow(ctx, q, name).Scan(&f.ID, &f.Name, &f.Country, &f.Description, &f.Image, &f.Lat, &f.Lng)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying featured destination %s: %w", name, err)
	}
	return &f, nil
}

// RecordLookup appends one row to the lookup log.
func (r *Repository) RecordLookup(ctx context.Context, l destination.Lookup) error {
	const q = `
		INSERT INTO destination_lookups
			(id, city, weather_status, photos_status, places_status, photo_count, place_count, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.Exec(ctx, q,
		l.ID,
		l.City,
		string(l.Sources.Weather),
		string(l.Sources.Photos),
		string(l.Sources.Places),
		l.PhotoCount,
		l.PlaceCount,
		l.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("recording lookup for city %s: %w", l.City, err)
	}
	return nil
}
