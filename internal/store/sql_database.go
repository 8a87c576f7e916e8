package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/migrations"
)

// DB wraps a database handle with the driver-specific error classifier.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// MigrateLocal applies the client SQLite schema.
func (db *DB) MigrateLocal() error {
	return migrations.MigrateLocal(db.DB)
}

// MigrateRemote applies the system-of-record PostgreSQL schema.
func (db *DB) MigrateRemote() error {
	return migrations.MigrateRemote(db.DB)
}

// wrap classifies err and joins catastrophic failures with
// [ErrCatastrophicStorage]; other errors are wrapped with fallback.
func (db *DB) wrap(err error, fallback error) error {
	if err == nil {
		return nil
	}
	if db.errorClassificator != nil && db.errorClassificator.Classify(err) == Catastrophic {
		return fmt.Errorf("%w: %w", ErrCatastrophicStorage, err)
	}
	if errors.Is(err, ErrCatastrophicStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", fallback, err)
}
