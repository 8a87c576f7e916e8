// Package migrations embeds and applies the database schemas: the client
// SQLite schema under local/ and the system-of-record PostgreSQL schema
// under remote/.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed local/*.sql
var localMigrations embed.FS

//go:embed remote/*.sql
var remoteMigrations embed.FS

// errNilDB is returned when a migration is requested without a database.
var errNilDB = errors.New("migration error: db is nil")

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// MigrateLocal applies the client schema to a SQLite database.
func MigrateLocal(db *sql.DB) error {
	return migrate(db, localMigrations, "sqlite3", "local")
}

// MigrateRemote applies the system-of-record schema to a PostgreSQL database.
func MigrateRemote(db *sql.DB) error {
	return migrate(db, remoteMigrations, "pgx", "remote")
}

func migrate(db *sql.DB, fsys embed.FS, dialect, dir string) error {
	if db == nil {
		return errNilDB
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
