package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-flock-keeper/internal/config"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// lifecycle is implemented by every local store.
type lifecycle interface {
	Name() string
	Init(ctx context.Context) error
	Flush(ctx context.Context) error
}

// ClientStorages groups every client-side store into a single value that is
// constructed once at startup and injected into the service layer.
type ClientStorages struct {
	Members      *KeyedStore[models.Member]
	Services     *KeyedStore[models.Service]
	Transactions *KeyedStore[models.Transaction]
	Users        *KeyedStore[models.User]
	Attendance   *KeyedStore[models.AttendanceRecord]
	Settings     *SingletonStore[models.Settings]

	// Queue is the durable log of pending operations.
	Queue *PendingOperationQueue

	db *DB
}

// Seeds holds the initial contents of stores that were never persisted.
type Seeds struct {
	Services []models.Service
	Settings models.Settings
}

// DefaultSeeds returns the seed set of a fresh installation.
func DefaultSeeds() Seeds {
	return Seeds{
		Services: []models.Service{
			{ID: "1", Name: "Sunday Morning Service", DayOfWeek: "Sunday", StartTime: "09:00"},
			{ID: "2", Name: "Sunday Evening Service", DayOfWeek: "Sunday", StartTime: "18:00"},
			{ID: "3", Name: "Midweek Service", DayOfWeek: "Wednesday", StartTime: "19:00"},
		},
		Settings: models.Settings{ChurchName: "My Church", Currency: "USD", Timezone: "UTC"},
	}
}

// NewClientStorages initialises the client storage layer. It performs the
// following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.MigrateLocal].
//  3. Constructs every store over the same database.
//
// Stores are not loaded here; call [ClientStorages.Init].
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, seeds Seeds, log *logger.Logger) (*ClientStorages, error) {
	log.Info().Str("func", "NewClientStorages").Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.MigrateLocal(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return newClientStorages(db, seeds, log), nil
}

func newClientStorages(db *DB, seeds Seeds, log *logger.Logger) *ClientStorages {
	repo := NewCollectionRepository(db)

	return &ClientStorages{
		Members:      NewKeyedStore[models.Member](models.CollectionMembers, repo, nil, log),
		Services:     NewKeyedStore(models.CollectionServices, repo, seeds.Services, log),
		Transactions: NewKeyedStore[models.Transaction](models.CollectionTransactions, repo, nil, log),
		Users:        NewKeyedStore[models.User](models.CollectionUsers, repo, nil, log),
		Attendance:   NewKeyedStore[models.AttendanceRecord](models.CollectionAttendance, repo, nil, log),
		Settings:     NewSingletonStore(models.CollectionSettings, repo, seeds.Settings, log),
		Queue:        NewPendingOperationQueue(db),
		db:           db,
	}
}

func (s *ClientStorages) stores() []lifecycle {
	return []lifecycle{s.Members, s.Services, s.Transactions, s.Users, s.Attendance, s.Settings}
}

// Init loads (or seeds) every store. The first failure aborts startup.
func (s *ClientStorages) Init(ctx context.Context) error {
	for _, st := range s.stores() {
		if err := st.Init(ctx); err != nil {
			return fmt.Errorf("init %s store: %w", st.Name(), err)
		}
	}
	return nil
}

// Flush persists every loaded store; it keeps going after a failure and
// returns all errors joined.
func (s *ClientStorages) Flush(ctx context.Context) error {
	var errs []error
	for _, st := range s.stores() {
		if err := st.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush %s store: %w", st.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Close flushes the stores and closes the database.
func (s *ClientStorages) Close(ctx context.Context) error {
	flushErr := s.Flush(ctx)
	if s.db == nil {
		return flushErr
	}
	return errors.Join(flushErr, s.db.Close())
}
