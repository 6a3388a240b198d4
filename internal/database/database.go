package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"mandi/server/internal/models"
)

// GeocodeEntry is one cached geocoding result. Found is false for addresses
// that no rewrite could resolve.
type GeocodeEntry struct {
	Scope     string `gorm:"primaryKey"`
	Address   string `gorm:"primaryKey"`
	Found     bool
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
}

func (GeocodeEntry) TableName() string {
	return "geocode_cache"
}

type Database struct {
	db *gorm.DB
}

// NewDatabase opens an in-memory SQLite database. The DSN must keep the data
// in memory, nothing outlives the process.
func NewDatabase(dsn string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return &Database{db: db}, nil
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GeocodeStore is a session scoped view of the shared geocode cache table
type GeocodeStore struct {
	db    *gorm.DB
	scope string
}

func (d *Database) GeocodeStore(scope string) *GeocodeStore {
	return &GeocodeStore{db: d.db, scope: scope}
}

func (s *GeocodeStore) Get(key string) (*models.Coordinates, bool, error) {
	var entry GeocodeEntry
	err := s.db.Where("scope = ? AND address = ?", s.scope, key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read geocode cache: %w", err)
	}
	if !entry.Found {
		return nil, true, nil
	}
	return &models.Coordinates{Lat: entry.Latitude, Lon: entry.Longitude}, true, nil
}

func (s *GeocodeStore) Put(key string, coords *models.Coordinates) error {
	entry := GeocodeEntry{Scope: s.scope, Address: key}
	if coords != nil {
		entry.Found = true
		entry.Latitude = coords.Lat
		entry.Longitude = coords.Lon
	}

	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write geocode cache: %w", err)
	}
	return nil
}

func (s *GeocodeStore) Len() int {
	var count int64
	if err := s.db.Model(&GeocodeEntry{}).Where("scope = ?", s.scope).Count(&count).Error; err != nil {
		return 0
	}
	return int(count)
}

// Purge drops every entry of the scope
func (s *GeocodeStore) Purge() error {
	err := s.db.Where("scope = ?", s.scope).Delete(&GeocodeEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to purge geocode cache: %w", err)
	}
	return nil
}
