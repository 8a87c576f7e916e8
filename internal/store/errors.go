package store

import "errors"

// Sentinel errors returned by stores and repositories to signal well-known
// failure conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrCatastrophicStorage is returned when the local persistence medium
	// itself is unavailable: disk full, corrupted or unreadable database
	// file, read-only medium or a closed connection. It is never retried and
	// never swallowed by best-effort writes.
	ErrCatastrophicStorage = errors.New("local storage is unavailable")

	// ErrCorruptCollection is returned when a persisted collection payload
	// cannot be decoded. It is always joined with [ErrCatastrophicStorage].
	ErrCorruptCollection = errors.New("persisted collection cannot be decoded")

	// ErrIDMismatch is returned by [KeyedStore.Update] when the partial record
	// carries an identifier different from the one being updated.
	ErrIDMismatch = errors.New("partial record id does not match")

	// ErrDuplicateID is returned by [KeyedStore.Add] when the id is taken.
	ErrDuplicateID = errors.New("record id already exists")

	// ErrRecordsNotSaved is returned when a bulk INSERT completes without
	// error but affects fewer rows than records were supplied.
	ErrRecordsNotSaved = errors.New("records were not saved")

	// ErrEmptyCollection is returned when a repository call names no collection.
	ErrEmptyCollection = errors.New("collection name is empty")

	// ErrEmptyFilter is returned by [RecordRepository.DeleteByKey] when the
	// filter would match the whole collection.
	ErrEmptyFilter = errors.New("delete filter is empty")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
