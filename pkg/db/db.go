// Package db opens the backing relational store and keeps its schema current.
package db

import (
	"fmt"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/keyflow/keyflow/pkg/model"
)

// Config holds database connection configuration.
type Config struct {
	// URL is the connection string (defaults to KEYFLOW_DATABASE_URL, then
	// DATABASE_URL). postgres:// and postgresql:// URLs select the postgres
	// driver; anything else is treated as a sqlite file path
	// (":memory:" included).
	URL string
}

// Connect establishes a database connection.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = os.Getenv("KEYFLOW_DATABASE_URL")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return nil, fmt.Errorf("database URL is required (database_url in config or KEYFLOW_DATABASE_URL)")
	}

	logMode := logger.Silent
	if os.Getenv("KEYFLOW_LOG_LEVEL") == "debug" {
		logMode = logger.Info
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logMode)}

	var (
		gdb *gorm.DB
		err error
	)
	if strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://") {
		gdb, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}), gormCfg)
	} else {
		gdb, err = gorm.Open(sqlite.Open(dbURL), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return gdb, nil
}

// Migrate brings the schema up to date. AutoMigrate creates missing tables
// and adds missing columns (the deprecated flag arrived after the keys table
// shipped), so it is safe to run on every startup against existing data.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&model.KeyRecord{}, &model.FlowAssociation{}); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	return nil
}
