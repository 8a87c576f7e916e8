// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-flock-keeper/internal/adapter"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// attendanceNamespace seeds the name-based ids of attendance records, so
// that the record of one member at one service always has the same id.
var attendanceNamespace = uuid.MustParse("6f1c3a52-4d0e-4b7a-9a57-2f0c1e8d9b34")

// AttendanceRecordID returns the deterministic id of member's record for key.
func AttendanceRecordID(key models.ServiceKey, member models.ID) models.ID {
	return models.ID(uuid.NewSHA1(attendanceNamespace, []byte(key.String()+"/"+member.String())).String())
}

// Reconciler replaces the remote attendance set of one service key with a
// locally composed target set.
//
// A replacement deletes every remote row of the key, resolves the member
// references of the target set, inserts the resolved rows in one bulk call
// and refetches the key so the local cache holds the authoritative rows.
// Unresolvable references are dropped with a warning and never fail the
// call. Replacements of the same key are serialized; different keys run in
// parallel.
type Reconciler struct {
	remote   adapter.RemoteStore
	resolver IdentityResolver
	cache    *store.KeyedStore[models.AttendanceRecord]

	locks keyedMutex

	logger *logger.Logger
}

// NewReconciler creates a reconciler writing its refetched rows to cache.
func NewReconciler(remote adapter.RemoteStore, resolver IdentityResolver, cache *store.KeyedStore[models.AttendanceRecord], log *logger.Logger) *Reconciler {
	return &Reconciler{
		remote:   remote,
		resolver: resolver,
		cache:    cache,
		logger:   log,
	}
}

// Replace makes the remote attendance set of key equal to entries.
// Running it twice with the same input yields the same remote set.
func (r *Reconciler) Replace(ctx context.Context, key models.ServiceKey, entries map[string]models.AttendanceStatus) (models.ReconcileResult, error) {
	log := logger.FromContext(ctx)

	if err := validateBatch(key, entries); err != nil {
		return models.ReconcileResult{}, err
	}

	unlock := r.locks.Lock(key.String())
	defer unlock()

	result := models.ReconcileResult{Key: key}

	// 1. delete by key
	deleted, err := r.remote.DeleteByKey(ctx, models.CollectionAttendance, models.ForKey(key))
	if err != nil {
		log.Err(err).Str("func", "Reconciler.Replace").Str("service_key", key.String()).Msg("error deleting remote rows of key")
		return result, &ReconcileError{Key: key, Stage: StageDeleteByKey, Err: err}
	}

	// 2-3. resolve and map
	records, warnings, err := r.resolve(ctx, key, entries)
	result.Warnings = warnings
	if err != nil {
		return result, &ReconcileError{Key: key, Stage: StageResolve, Warnings: warnings, Err: err}
	}

	// 4. bulk insert
	if len(records) > 0 {
		remoteRecords, err := toRemoteRecords(records)
		if err != nil {
			return result, &ReconcileError{Key: key, Stage: StageBulkInsert, Warnings: warnings, Err: err}
		}

		ids, err := r.remote.BulkInsert(ctx, models.CollectionAttendance, remoteRecords)
		if err != nil {
			log.Err(err).Str("func", "Reconciler.Replace").Str("service_key", key.String()).Int("records", len(records)).Msg("error inserting attendance rows")
			return result, &ReconcileError{Key: key, Stage: StageBulkInsert, Warnings: warnings, Err: err}
		}
		result.Inserted = len(ids)
		result.InsertedIDs = ids
	}

	// 5. refetch
	refetched, err := r.fetch(ctx, models.ForKey(key))
	if err != nil {
		log.Err(err).Str("func", "Reconciler.Replace").Str("service_key", key.String()).Msg("error refetching attendance rows")
		return result, &ReconcileError{Key: key, Stage: StageRefetch, Warnings: warnings, Err: err}
	}
	result.Records = refetched

	if err = r.cache.ReplaceWhere(ctx, matchKey(key), refetched); err != nil {
		return result, &ReconcileError{Key: key, Stage: StageLocalCache, Warnings: warnings, Err: err}
	}

	log.Info().Str("func", "Reconciler.Replace").Str("service_key", key.String()).
		Int64("deleted", deleted).Int("inserted", result.Inserted).Int("unresolved", len(warnings)).
		Msg("attendance reconciled")

	return result, nil
}

// DeleteRecord removes one attendance record remotely and refetches the
// key it belonged to. Cached rows of other keys are left alone, so optimistic
// rows still waiting in the queue survive.
func (r *Reconciler) DeleteRecord(ctx context.Context, id models.ID) error {
	log := logger.FromContext(ctx)

	cached, found, err := r.cache.Get(ctx, id)
	if err != nil {
		return err
	}
	if found {
		unlock := r.locks.Lock(cached.Key().String())
		defer unlock()
	}

	if err := r.remote.DeletePoint(ctx, models.CollectionAttendance, id.String()); err != nil {
		log.Err(err).Str("func", "Reconciler.DeleteRecord").Str("id", id.String()).Msg("error deleting attendance record")
		return fmt.Errorf("%w: delete attendance record %s: %w", ErrRemoteWrite, id, err)
	}

	if !found {
		return nil
	}

	key := cached.Key()
	refetched, err := r.fetch(ctx, models.ForKey(key))
	if err != nil {
		return fmt.Errorf("%w: refetch attendance of %s: %w", ErrRemoteWrite, key, err)
	}

	return r.cache.ReplaceWhere(ctx, matchKey(key), refetched)
}

// resolve maps entries to attendance records in sorted reference order.
// A member reached by more than one reference keeps the first entry.
func (r *Reconciler) resolve(ctx context.Context, key models.ServiceKey, entries map[string]models.AttendanceStatus) ([]models.AttendanceRecord, []models.ResolutionWarning, error) {
	log := logger.FromContext(ctx)

	refs := make([]string, 0, len(entries))
	for ref := range entries {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	var (
		records  = make([]models.AttendanceRecord, 0, len(refs))
		warnings []models.ResolutionWarning
		seen     = make(map[models.ID]string, len(refs))
	)

	for _, ref := range refs {
		identity, ok, err := r.resolver.Resolve(ctx, ref)
		if err != nil {
			return nil, warnings, fmt.Errorf("resolve %q: %w", ref, err)
		}
		if !ok {
			log.Warn().Str("func", "Reconciler.resolve").Str("service_key", key.String()).Str("reference", ref).Msg("member reference not resolved, entry dropped")
			warnings = append(warnings, models.ResolutionWarning{Reference: ref, Reason: "no member matches the reference"})
			continue
		}
		if first, dup := seen[identity.MemberID]; dup {
			warnings = append(warnings, models.ResolutionWarning{Reference: ref, Reason: fmt.Sprintf("same member as %q", first)})
			continue
		}
		seen[identity.MemberID] = ref

		records = append(records, models.AttendanceRecord{
			ID:          AttendanceRecordID(key, identity.MemberID),
			Date:        key.Date,
			ServiceName: key.ServiceName,
			MemberID:    identity.MemberID,
			Status:      entries[ref],
		})
	}

	return records, warnings, nil
}

func (r *Reconciler) fetch(ctx context.Context, filter models.RecordFilter) ([]models.AttendanceRecord, error) {
	rows, err := r.remote.QueryAll(ctx, models.CollectionAttendance, filter)
	if err != nil {
		return nil, err
	}

	records := make([]models.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRemoteRecord(row)
		if err != nil {
			r.logger.Err(err).Str("func", "Reconciler.fetch").Str("id", row.ID).Msg("skipping undecodable remote attendance row")
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func validateBatch(key models.ServiceKey, entries map[string]models.AttendanceStatus) error {
	if err := key.Validate(); err != nil {
		return fmt.Errorf("%w: %w: %w", ErrValidation, ErrInvalidServiceKey, err)
	}
	for ref, status := range entries {
		if !status.Valid() {
			return fmt.Errorf("%w: %w: %q for %q", ErrValidation, ErrInvalidAttendanceStatus, status, ref)
		}
	}
	return nil
}

func matchKey(key models.ServiceKey) func(models.AttendanceRecord) bool {
	return func(rec models.AttendanceRecord) bool {
		return rec.Key() == key
	}
}

func toRemoteRecords(records []models.AttendanceRecord) ([]models.RemoteRecord, error) {
	out := make([]models.RemoteRecord, 0, len(records))
	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode attendance record %s: %w", rec.ID, err)
		}
		out = append(out, models.RemoteRecord{
			ID:         rec.ID.String(),
			Collection: models.CollectionAttendance,
			Date:       rec.Date,
			Service:    rec.ServiceName,
			Payload:    payload,
		})
	}
	return out, nil
}

func fromRemoteRecord(row models.RemoteRecord) (models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	if err := json.Unmarshal(row.Payload, &rec); err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("decode attendance payload: %w", err)
	}

	// the row scope is authoritative
	rec.ID = models.NewID(row.ID)
	if row.Date != "" {
		rec.Date = row.Date
	}
	if row.Service != "" {
		rec.ServiceName = row.Service
	}

	return rec, nil
}

// keyedMutex is a set of mutexes addressed by string. Entries are removed
// once no goroutine holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// Lock acquires the mutex of key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()

	return func() {
		m.Unlock()

		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
