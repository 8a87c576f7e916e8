package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
)

type collectionRepository struct {
	*DB
}

// NewCollectionRepository returns the SQLite-backed [CollectionRepository].
func NewCollectionRepository(db *DB) CollectionRepository {
	return &collectionRepository{db}
}

func (r *collectionRepository) Load(ctx context.Context, name string) (json.RawMessage, bool, error) {
	log := logger.FromContext(ctx)

	if name == "" {
		return nil, false, ErrEmptyCollection
	}

	var payload []byte
	err := r.DB.QueryRowContext(ctx, loadCollection, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		log.Err(err).Str("func", "collectionRepository.Load").Str("collection", name).Msg("error loading collection")
		return nil, false, r.wrap(err, ErrExecutingQuery)
	}

	return payload, true, nil
}

func (r *collectionRepository) Save(ctx context.Context, name string, payload json.RawMessage) error {
	log := logger.FromContext(ctx)

	if name == "" {
		return ErrEmptyCollection
	}

	_, err := r.DB.ExecContext(ctx, saveCollection, name, []byte(payload), time.Now().UnixNano())
	if err != nil {
		log.Err(err).Str("func", "collectionRepository.Save").Str("collection", name).Msg("error saving collection")
		return r.wrap(err, ErrExecutingStatement)
	}

	return nil
}
