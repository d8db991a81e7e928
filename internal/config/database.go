package config

import (
	"fmt"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"restaurant_map/internal/logger"
	"restaurant_map/internal/models"
)

// OpenPostgres connects through lib/pq, enables PostGIS and migrates the
// restaurants table together with its spatial index.
func OpenPostgres(cfg PostgresConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        cfg.DSN(),
	}), &gorm.Config{Logger: logger.GormLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS postgis;").Error; err != nil {
		return nil, fmt.Errorf("enable postgis: %w", err)
	}

	if err := db.AutoMigrate(&models.Restaurant{}); err != nil {
		return nil, fmt.Errorf("auto-migration failed: %w", err)
	}

	// Geography cast so that the index serves meter-based ST_DWithin lookups.
	if err := db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_restaurants_address_coord ON restaurants USING GIST ((address_coord::geography));",
	).Error; err != nil {
		return nil, fmt.Errorf("create spatial index: %w", err)
	}

	return db, nil
}
