package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// SQLiteErrorClassifier implements [ErrorClassificator] for the client
// database. Failures of the medium are [Catastrophic]; lock contention is
// [Retryable]; everything else is [NonRetryable].
type SQLiteErrorClassifier struct{}

// NewSQLiteErrorClassifier constructs a [SQLiteErrorClassifier].
func NewSQLiteErrorClassifier() *SQLiteErrorClassifier {
	return &SQLiteErrorClassifier{}
}

// Classify implements [ErrorClassificator].
func (c *SQLiteErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return NonRetryable
	}

	// database/sql does not export its closed-handle error.
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return Catastrophic
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return ClassifySQLiteError(sqliteErr)
	}

	return NonRetryable
}

// ClassifySQLiteError maps a SQLite primary result code.
//
// Catastrophic codes: SQLITE_FULL, SQLITE_CORRUPT, SQLITE_NOTADB,
// SQLITE_CANTOPEN, SQLITE_IOERR, SQLITE_READONLY, SQLITE_NOMEM.
// Retryable codes: SQLITE_BUSY, SQLITE_LOCKED.
func ClassifySQLiteError(err sqlite3.Error) ErrorClassification {
	switch err.Code {
	case sqlite3.ErrFull,
		sqlite3.ErrCorrupt,
		sqlite3.ErrNotADB,
		sqlite3.ErrCantOpen,
		sqlite3.ErrIoErr,
		sqlite3.ErrReadonly,
		sqlite3.ErrNomem:
		return Catastrophic

	case sqlite3.ErrBusy,
		sqlite3.ErrLocked:
		return Retryable
	}

	return NonRetryable
}
