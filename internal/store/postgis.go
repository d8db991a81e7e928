package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant_map/internal/models"
)

// geogPoint builds the query center; arguments are lng then lat.
const geogPoint = "ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography"

// scoresByCuisineSQL unnests every grade so that each inspection counts once.
const scoresByCuisineSQL = `
SELECT r.cuisine AS cuisine,
       AVG((g->>'score')::float8) AS average_score,
       COUNT(*) AS count
FROM restaurants r
CROSS JOIN LATERAL jsonb_array_elements(
    CASE WHEN jsonb_typeof(r.grades) = 'array' THEN r.grades ELSE '[]'::jsonb END
) AS g
WHERE r.cuisine <> ''
GROUP BY r.cuisine`

// PostGIS stores records in a gorm-managed table with a geometry(Point,4326) column.
type PostGIS struct {
	db *gorm.DB
}

func NewPostGIS(db *gorm.DB) *PostGIS {
	return &PostGIS{db: db}
}

// nearbyRow carries the computed distance next to the record columns.
type nearbyRow struct {
	models.Restaurant
	Distance float64 `gorm:"column:distance"`
}

func (s *PostGIS) List(ctx context.Context) ([]models.Restaurant, error) {
	var items []models.Restaurant
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, translatePQ("list", err)
	}
	return items, nil
}

func (s *PostGIS) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}
	var r models.Restaurant
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, translatePQ("get", err)
	}
	return &r, nil
}

func (s *PostGIS) Create(ctx context.Context, r *models.Restaurant) error {
	r.ID = newID()
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return translatePQ("create", err)
	}
	return nil
}

func (s *PostGIS) CreateMany(ctx context.Context, items []models.Restaurant) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	for i := range items {
		items[i].ID = newID()
	}
	res := s.db.WithContext(ctx).CreateInBatches(&items, 500)
	if res.Error != nil {
		return int(res.RowsAffected), translatePQ("create many", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (s *PostGIS) Replace(ctx context.Context, id string, r *models.Restaurant) error {
	if !validID(id) {
		return models.ErrNotFound
	}
	r.ID = id
	r.Normalize()

	// Select("*") writes zero values too, which gives full-replace semantics.
	res := s.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("id = ?", id).
		Select("*").
		Updates(r)
	if res.Error != nil {
		return translatePQ("replace", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *PostGIS) Delete(ctx context.Context, id string) (*models.Restaurant, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}
	var r models.Restaurant
	res := s.db.WithContext(ctx).Clauses(clause.Returning{}).Where("id = ?", id).Delete(&r)
	if res.Error != nil {
		return nil, translatePQ("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.ErrNotFound
	}
	r.Normalize()
	return &r, nil
}

func (s *PostGIS) Nearby(ctx context.Context, center models.LngLat, maxMeters float64) ([]models.NearbyRestaurant, error) {
	var rows []nearbyRow
	err := s.db.WithContext(ctx).Model(&models.Restaurant{}).
		Select("restaurants.*, ST_Distance(address_coord::geography, "+geogPoint+", false) AS distance", center.Lng, center.Lat).
		Where("address_coord IS NOT NULL").
		Where("ST_DWithin(address_coord::geography, "+geogPoint+", ?, false)", center.Lng, center.Lat, maxMeters).
		Order("distance").
		Find(&rows).Error
	if err != nil {
		return nil, translatePQ("nearby", err)
	}

	out := make([]models.NearbyRestaurant, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.NearbyRestaurant{
			Restaurant: row.Restaurant,
			Dist:       models.Dist{Calculated: row.Distance},
		})
	}
	return out, nil
}

func (s *PostGIS) ScoresByCuisine(ctx context.Context) ([]models.CuisineScore, error) {
	var out []models.CuisineScore
	if err := s.db.WithContext(ctx).Raw(scoresByCuisineSQL).Scan(&out).Error; err != nil {
		return nil, translatePQ("scores by cuisine", err)
	}
	return out, nil
}

func (s *PostGIS) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return models.NewStoreError("ping", err)
	}
	return models.NewStoreError("ping", sqlDB.PingContext(ctx))
}

func (s *PostGIS) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translatePQ maps lib/pq data (22) and integrity (23) errors to invalid input.
func translatePQ(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "22", "23":
			logrus.WithFields(logrus.Fields{
				"op":   op,
				"code": string(pqErr.Code),
			}).Warn("postgres rejected record")
			return fmt.Errorf("%w: %s", models.ErrInvalidArgument, pqErr.Message)
		}
	}
	return models.NewStoreError(op, err)
}
