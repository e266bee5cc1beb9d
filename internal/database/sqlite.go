package database

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/card-resolver/internal/models"
)

var DB *gorm.DB

// Open connects to a sqlite database and migrates the catalog schema.
// Use "file::memory:" for a throwaway database.
func Open(dbPath string, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}

	if strings.Contains(dbPath, ":memory:") {
		// every new connection would get its own empty in-memory database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(&models.CatalogRecord{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// Initialize opens the process-wide database
func Initialize(dbPath string, debug bool) error {
	db, err := Open(dbPath, debug)
	if err != nil {
		return err
	}
	DB = db

	logrus.WithFields(logrus.Fields{"component": "database", "path": dbPath}).Info("database connected and migrated")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
