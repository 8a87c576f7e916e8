// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// secretTag marks struct fields that never leave the installation.
const secretTag = "secret"

// BackupService exports the local stores into one JSON document and
// restores them from such a document.
type BackupService struct {
	sources []BackupSource
	now     func() time.Time

	logger *logger.Logger
}

// NewBackupService creates a backup service over sources. Sources are
// exported and restored in the given order.
func NewBackupService(log *logger.Logger, sources ...BackupSource) *BackupService {
	return &BackupService{
		sources: sources,
		now:     time.Now,
		logger:  log,
	}
}

// Export takes a snapshot of every source. Fields tagged secret:"true" are
// empty in the result.
func (s *BackupService) Export(ctx context.Context) (models.BackupSnapshot, error) {
	snapshot := models.BackupSnapshot{
		Timestamp:   s.now().UTC(),
		Collections: make(map[string]json.RawMessage, len(s.sources)),
	}

	for _, src := range s.sources {
		value, err := src.Snapshot(ctx)
		if err != nil {
			s.logger.Err(err).Str("func", "BackupService.Export").Str("collection", src.Name()).Msg("error taking snapshot")
			return models.BackupSnapshot{}, fmt.Errorf("snapshot %s: %w", src.Name(), err)
		}

		scrubSecrets(reflect.ValueOf(value))

		raw, err := json.Marshal(value)
		if err != nil {
			return models.BackupSnapshot{}, fmt.Errorf("encode %s: %w", src.Name(), err)
		}
		snapshot.Collections[src.Name()] = raw
	}

	return snapshot, nil
}

// WriteTo exports and writes the indented document to w.
func (s *BackupService) WriteTo(ctx context.Context, w io.Writer) error {
	snapshot, err := s.Export(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err = enc.Encode(snapshot); err != nil {
		return fmt.Errorf("write backup document: %w", err)
	}
	return nil
}

// Import restores every store named in the document read from r and leaves
// the others untouched. The whole document is decoded before the first
// store is written; a malformed document fails with [ErrValidation] and
// changes nothing.
func (s *BackupService) Import(ctx context.Context, r io.Reader) ([]string, error) {
	log := logger.FromContext(ctx)

	var snapshot models.BackupSnapshot
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	known := make(map[string]struct{}, len(s.sources))
	type restore struct {
		name  string
		apply func(context.Context) error
	}
	var restores []restore

	for _, src := range s.sources {
		known[src.Name()] = struct{}{}
		if !snapshot.Has(src.Name()) {
			continue
		}

		apply, err := src.PrepareRestore(snapshot.Collections[src.Name()])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		restores = append(restores, restore{name: src.Name(), apply: apply})
	}

	for name := range snapshot.Collections {
		if _, ok := known[name]; !ok {
			log.Warn().Str("func", "BackupService.Import").Str("collection", name).Msg("unknown collection in backup document ignored")
		}
	}

	restored := make([]string, 0, len(restores))
	var errs []error
	for _, rs := range restores {
		if err := rs.apply(ctx); err != nil {
			log.Err(err).Str("func", "BackupService.Import").Str("collection", rs.name).Msg("error restoring collection")
			errs = append(errs, fmt.Errorf("restore %s: %w", rs.name, err))
			continue
		}
		restored = append(restored, rs.name)
	}

	log.Info().Str("func", "BackupService.Import").Strs("restored", restored).Time("snapshot_at", snapshot.Timestamp).Msg("backup imported")

	return restored, errors.Join(errs...)
}

// scrubSecrets zeroes every settable field tagged secret:"true" reachable
// through pointers, slices, arrays and nested structs.
func scrubSecrets(v reflect.Value) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if !v.IsNil() {
			scrubSecrets(v.Elem())
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			scrubSecrets(v.Index(i))
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			if !field.CanSet() {
				continue
			}
			if t.Field(i).Tag.Get(secretTag) == "true" {
				field.SetZero()
				continue
			}
			scrubSecrets(field)
		}
	}
}
