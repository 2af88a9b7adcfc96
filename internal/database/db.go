package database

import (
	"errors"
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"             // SQLite driver

	"cantina/internal/config"
	"cantina/internal/models"
)

// ErrItemNotFound is returned when a menu lookup matches nothing
var ErrItemNotFound = errors.New("menu item not found")

// ErrOrderNotFound is returned when an archived order does not exist
var ErrOrderNotFound = errors.New("order not found")

// Open connects to the catalog database described by cfg
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	db.LogMode(cfg.LogMode)

	if cfg.Driver == "sqlite3" {
		// a single connection keeps ":memory:" databases shared and
		// serialises sqlite writers
		db.DB().SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates the catalog and archive tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.MenuItem{}, &models.Order{}, &models.OrderLine{}).Error; err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
