package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"floodroute/internal/types"
)

// TownRepository resolves request locations against the towns cache table.
// Name lookups widen progressively (exact, then prefix, then contains) and
// coordinate lookups return the nearest town by great-circle distance.
type TownRepository struct {
	db DBTX
}

// NewTownRepository creates a TownRepository backed by the given database
// connection (pool or transaction).
func NewTownRepository(db DBTX) *TownRepository {
	return &TownRepository{db: db}
}

const townColumns = `id, name, latitude, longitude, state_name`

// FindByName resolves a town by name, case-insensitively. It tries an exact
// match first, then a prefix match, then a contains match, returning the
// first hit. A miss on all three is a not_found_location error.
func (r *TownRepository) FindByName(ctx context.Context, name string) (*types.Town, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.NewAppError(types.ErrCodeNotFoundLocation, "town name is empty", nil)
	}

	for _, pattern := range []string{name, name + "%", "%" + name + "%"} {
		town, err := r.findOneByPattern(ctx, pattern)
		if err != nil {
			return nil, err
		}
		if town != nil {
			return town, nil
		}
	}

	return nil, types.NewAppErrorWithDetails(
		types.ErrCodeNotFoundLocation,
		"no town matches the given name",
		nil,
		map[string]any{"city": name},
	)
}

func (r *TownRepository) findOneByPattern(ctx context.Context, pattern string) (*types.Town, error) {
	const q = `
		SELECT ` + townColumns + `
		FROM towns
		WHERE name ILIKE $1
		ORDER BY name
		LIMIT 1`

	town, err := scanTown(r.db.QueryRow(ctx, q, pattern))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "resolving town by name", err)
	}
	return town, nil
}

// FindNearest returns the town closest to the given coordinates by haversine
// distance, computed in SQL over the cached coordinates.
func (r *TownRepository) FindNearest(ctx context.Context, lat, lon float64) (*types.Town, error) {
	const q = `
		SELECT ` + townColumns + `
		FROM towns
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY (
			6371 * 2 * ASIN(SQRT(
				POWER(SIN(RADIANS($1 - latitude) / 2), 2) +
				COS(RADIANS($1)) * COS(RADIANS(latitude)) *
				POWER(SIN(RADIANS($2 - longitude) / 2), 2)
			))
		) ASC
		LIMIT 1`

	town, err := scanTown(r.db.QueryRow(ctx, q, lat, lon))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.NewAppError(types.ErrCodeNotFoundLocation, "towns table is empty", nil)
	}
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "resolving nearest town", err)
	}
	return town, nil
}

func scanTown(row pgx.Row) (*types.Town, error) {
	var t types.Town
	var stateName *string

	if err := row.Scan(&t.ID, &t.Name, &t.Latitude, &t.Longitude, &stateName); err != nil {
		return nil, err
	}
	if stateName != nil {
		t.StateName = *stateName
	}
	return &t, nil
}
