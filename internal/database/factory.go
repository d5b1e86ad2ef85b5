package database

import (
	"fmt"
	"os"
	"path/filepath"

	"photocat/internal/config"
)

// NewDatabaseFromConfig opens the catalog selected by the database config type
// and brings its schema up to date.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, libraryID string) (*SQLiteDatabase, error) {
	var path string
	switch cfg.Type {
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		path = DatabasePath(cfg, libraryID)
	case "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}

	db, err := NewSQLiteDatabase(path, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating catalog: %w", err)
	}
	return db, nil
}

// DatabasePath returns the catalog file location for a sqlite config.
func DatabasePath(cfg config.DatabaseConfig, libraryID string) string {
	return filepath.Join(cfg.DataDir, libraryID+".db")
}
