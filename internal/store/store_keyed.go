// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"dario.cat/mergo"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// KeyedStore is a self-bootstrapping local store for an array of records
// with unique ids.
//
// The whole array is kept in memory and persisted as one document through a
// [CollectionRepository] after every write, so a successful write also
// persists any earlier write whose persistence was lost. On first access
// with nothing persisted the store is filled from its seed and the seed is
// persisted immediately.
//
// Add, Update, Save and Delete are best effort: a failed persistence is
// logged and swallowed unless it is an [ErrCatastrophicStorage] failure.
// SaveAll, Restore and ReplaceWhere always return persistence errors.
// A write that returns an error leaves the in-memory array as it was, so a
// later write never persists a change its caller was told had failed.
//
// A KeyedStore is safe for concurrent use.
type KeyedStore[T models.Record] struct {
	name string
	repo CollectionRepository
	seed []T
	log  *logger.Logger

	mu     sync.RWMutex
	loaded bool
	items  []T
}

// NewKeyedStore constructs a store for the named collection. seed is copied.
func NewKeyedStore[T models.Record](name string, repo CollectionRepository, seed []T, log *logger.Logger) *KeyedStore[T] {
	return &KeyedStore[T]{
		name: name,
		repo: repo,
		seed: clone(seed),
		log:  log,
	}
}

// Name returns the collection name.
func (s *KeyedStore[T]) Name() string {
	return s.name
}

// Init loads the persisted collection, or seeds and persists it when the
// collection was never written. Calling Init is optional; every other
// method initializes the store on first use.
func (s *KeyedStore[T]) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadLocked(ctx)
}

// Flush persists the in-memory array if the store was loaded.
func (s *KeyedStore[T]) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil
	}
	return s.persistLocked(ctx)
}

// GetAll returns a copy of every record. The result is never nil.
func (s *KeyedStore[T]) GetAll(ctx context.Context) ([]T, error) {
	s.mu.RLock()
	if s.loaded {
		out := clone(s.items)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return nil, err
	}
	return clone(s.items), nil
}

// Get returns the record with id.
func (s *KeyedStore[T]) Get(ctx context.Context, id models.ID) (T, bool, error) {
	var zero T

	items, err := s.GetAll(ctx)
	if err != nil {
		return zero, false, err
	}
	if i := indexOf(items, id); i >= 0 {
		return items[i], true, nil
	}
	return zero, false, nil
}

// Add appends item. It fails with [ErrDuplicateID] when a record with the
// same id is already stored; use Save to upsert.
func (s *KeyedStore[T]) Add(ctx context.Context, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	if indexOf(s.items, item.RecordID()) >= 0 {
		return fmt.Errorf("%w: %s %q", ErrDuplicateID, s.name, item.RecordID())
	}

	prev := clone(s.items)
	s.items = append(s.items, item)

	return s.commitLocked(ctx, "KeyedStore.Add", prev)
}

// Update shallow-merges the non-zero fields of partial into the record with
// id. It is a no-op when no such record exists.
func (s *KeyedStore[T]) Update(ctx context.Context, id models.ID, partial T) error {
	if pid := partial.RecordID(); pid != "" && pid != id {
		return fmt.Errorf("%w: %q != %q", ErrIDMismatch, pid, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	i := indexOf(s.items, id)
	if i < 0 {
		return nil
	}

	merged := s.items[i]
	if err := mergo.Merge(&merged, partial, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge %s record %s: %w", s.name, id, err)
	}
	prev := clone(s.items)
	s.items[i] = merged

	return s.commitLocked(ctx, "KeyedStore.Update", prev)
}

// Save replaces the record with the same id, or appends item when absent.
func (s *KeyedStore[T]) Save(ctx context.Context, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	prev := clone(s.items)
	if i := indexOf(s.items, item.RecordID()); i >= 0 {
		s.items[i] = item
	} else {
		s.items = append(s.items, item)
	}

	return s.commitLocked(ctx, "KeyedStore.Save", prev)
}

// Delete removes the record with id. It is a no-op when absent.
func (s *KeyedStore[T]) Delete(ctx context.Context, id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	i := indexOf(s.items, id)
	if i < 0 {
		return nil
	}
	prev := clone(s.items)
	s.items = append(s.items[:i], s.items[i+1:]...)

	return s.commitLocked(ctx, "KeyedStore.Delete", prev)
}

// SaveAll replaces the whole collection.
func (s *KeyedStore[T]) SaveAll(ctx context.Context, items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, prevLoaded := s.items, s.loaded
	s.items = clone(items)
	s.loaded = true

	if err := s.persistLocked(ctx); err != nil {
		s.items, s.loaded = prev, prevLoaded
		return err
	}
	return nil
}

// Restore replaces the whole collection with the contents of a backup.
func (s *KeyedStore[T]) Restore(ctx context.Context, items []T) error {
	return s.SaveAll(ctx, items)
}

// ReplaceWhere removes every record matching match and appends items, in
// one persisted write.
func (s *KeyedStore[T]) ReplaceWhere(ctx context.Context, match func(T) bool, items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	kept := make([]T, 0, len(s.items)+len(items))
	for _, item := range s.items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	prev := s.items
	s.items = append(kept, items...)

	if err := s.persistLocked(ctx); err != nil {
		s.items = prev
		return err
	}
	return nil
}

// Snapshot returns a copy of the collection for export.
func (s *KeyedStore[T]) Snapshot(ctx context.Context) (any, error) {
	return s.GetAll(ctx)
}

// PrepareRestore decodes a backup payload without touching the store and
// returns the function that restores it.
func (s *KeyedStore[T]) PrepareRestore(raw json.RawMessage) (func(context.Context) error, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.name, err)
	}

	return func(ctx context.Context) error {
		return s.Restore(ctx, items)
	}, nil
}

func (s *KeyedStore[T]) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	payload, found, err := s.repo.Load(ctx, s.name)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.name, err)
	}

	if !found {
		s.items = clone(s.seed)
		s.loaded = true
		if err := s.persistBestEffort(ctx, "KeyedStore.loadLocked"); err != nil {
			s.loaded = false
			return fmt.Errorf("persist %s seed: %w", s.name, err)
		}
		s.log.Debug().Str("func", "KeyedStore.loadLocked").Str("collection", s.name).Int("seeded", len(s.items)).Msg("collection initialized from seed")
		return nil
	}

	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return fmt.Errorf("%w: %w: %s: %v", ErrCatastrophicStorage, ErrCorruptCollection, s.name, err)
	}

	s.items = items
	s.loaded = true

	return nil
}

func (s *KeyedStore[T]) persistLocked(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []T{}
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.name, err)
	}

	return s.repo.Save(ctx, s.name, payload)
}

func (s *KeyedStore[T]) persistBestEffort(ctx context.Context, fn string) error {
	err := s.persistLocked(ctx)
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrCatastrophicStorage) {
		s.log.Err(err).Str("func", fn).Str("collection", s.name).Msg("local storage unavailable")
		return err
	}

	s.log.Warn().Err(err).Str("func", fn).Str("collection", s.name).Msg("write kept in memory, persisting failed")
	return nil
}

// commitLocked persists the array and rolls it back to prev when the
// persistence error is returned to the caller.
func (s *KeyedStore[T]) commitLocked(ctx context.Context, fn string, prev []T) error {
	if err := s.persistBestEffort(ctx, fn); err != nil {
		s.items = prev
		return err
	}
	return nil
}

func indexOf[T models.Record](items []T, id models.ID) int {
	for i, item := range items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
