// Package store persists restaurant records and runs the two spatial and
// aggregate queries against the configured backend.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"restaurant_map/internal/config"
	"restaurant_map/internal/models"
)

// Store is the record store. Implementations return models.ErrNotFound for
// unknown ids and wrap other failures in *models.StoreError.
type Store interface {
	List(ctx context.Context) ([]models.Restaurant, error)
	Get(ctx context.Context, id string) (*models.Restaurant, error)
	// Create assigns r.ID.
	Create(ctx context.Context, r *models.Restaurant) error
	// Replace overwrites the whole record stored under id.
	Replace(ctx context.Context, id string, r *models.Restaurant) error
	// Delete returns the record as it was before removal.
	Delete(ctx context.Context, id string) (*models.Restaurant, error)
	// Nearby returns mappable records within maxMeters of center, nearest first.
	Nearby(ctx context.Context, center models.LngLat, maxMeters float64) ([]models.NearbyRestaurant, error)
	// ScoresByCuisine averages every grade of every record, grouped by cuisine.
	ScoresByCuisine(ctx context.Context) ([]models.CuisineScore, error)
	Ping(ctx context.Context) error
	Close() error
}

// BulkCreator is implemented by backends that can insert many records in one round trip.
type BulkCreator interface {
	CreateMany(ctx context.Context, items []models.Restaurant) (int, error)
}

// Open builds the backend selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostGIS:
		db, err := config.OpenPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return NewPostGIS(db), nil
	case config.DriverMongo:
		return OpenMongo(ctx, cfg.Mongo)
	case config.DriverElastic:
		return OpenElastic(ctx, cfg.Elastic)
	case config.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func newID() string { return uuid.NewString() }

// validID filters ids that cannot exist in any backend.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
