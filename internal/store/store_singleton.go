package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
)

// SingletonStore holds exactly one configuration-like object with the same
// initialize-on-first-access and restore contract as [KeyedStore].
// Save replaces the whole object and always returns persistence errors; a
// failed Save leaves the previous object in place.
type SingletonStore[T any] struct {
	name string
	repo CollectionRepository
	seed T
	log  *logger.Logger

	mu     sync.RWMutex
	loaded bool
	value  T
}

// NewSingletonStore constructs a singleton store for the named collection.
func NewSingletonStore[T any](name string, repo CollectionRepository, seed T, log *logger.Logger) *SingletonStore[T] {
	return &SingletonStore[T]{
		name: name,
		repo: repo,
		seed: seed,
		log:  log,
	}
}

// Name returns the collection name.
func (s *SingletonStore[T]) Name() string {
	return s.name
}

// Init loads or seeds the object.
func (s *SingletonStore[T]) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked(ctx)
}

// Flush persists the object if it was loaded.
func (s *SingletonStore[T]) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil
	}
	return s.persistLocked(ctx)
}

// Get returns the current object.
func (s *SingletonStore[T]) Get(ctx context.Context) (T, error) {
	s.mu.RLock()
	if s.loaded {
		v := s.value
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		var zero T
		return zero, err
	}
	return s.value, nil
}

// Save replaces the object.
func (s *SingletonStore[T]) Save(ctx context.Context, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, prevLoaded := s.value, s.loaded
	s.value = v
	s.loaded = true

	if err := s.persistLocked(ctx); err != nil {
		s.value, s.loaded = prev, prevLoaded
		return err
	}
	return nil
}

// Restore replaces the object with the contents of a backup.
func (s *SingletonStore[T]) Restore(ctx context.Context, v T) error {
	return s.Save(ctx, v)
}

// Snapshot returns a pointer to a copy of the object for export.
func (s *SingletonStore[T]) Snapshot(ctx context.Context) (any, error) {
	v, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// PrepareRestore decodes a backup payload and returns the function that
// restores it.
func (s *SingletonStore[T]) PrepareRestore(raw json.RawMessage) (func(context.Context) error, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.name, err)
	}

	return func(ctx context.Context) error {
		return s.Restore(ctx, v)
	}, nil
}

func (s *SingletonStore[T]) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	payload, found, err := s.repo.Load(ctx, s.name)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.name, err)
	}

	if !found {
		s.value = s.seed
		if err := s.persistLocked(ctx); err != nil {
			return fmt.Errorf("persist %s seed: %w", s.name, err)
		}
		s.loaded = true
		s.log.Debug().Str("func", "SingletonStore.loadLocked").Str("collection", s.name).Msg("singleton initialized from seed")
		return nil
	}

	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("%w: %w: %s: %v", ErrCatastrophicStorage, ErrCorruptCollection, s.name, err)
	}

	s.value = v
	s.loaded = true

	return nil
}

func (s *SingletonStore[T]) persistLocked(ctx context.Context) error {
	payload, err := json.Marshal(s.value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.name, err)
	}

	return s.repo.Save(ctx, s.name, payload)
}
