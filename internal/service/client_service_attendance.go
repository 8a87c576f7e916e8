package service

import (
	"context"

	"github.com/MKhiriev/go-flock-keeper/internal/adapter"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// AttendanceService marks attendance for a service occurrence.
//
// While online a marking is reconciled immediately. While offline, or when
// the remote write fails transiently, the resolved rows are written to the
// local cache optimistically and the batch is queued for the next sync pass.
type AttendanceService struct {
	reconciler  *Reconciler
	coordinator *SyncCoordinator
	monitor     ConnectivityMonitor
	cache       *store.KeyedStore[models.AttendanceRecord]

	logger *logger.Logger
}

// NewAttendanceService creates the service.
func NewAttendanceService(reconciler *Reconciler, coordinator *SyncCoordinator, monitor ConnectivityMonitor, cache *store.KeyedStore[models.AttendanceRecord], log *logger.Logger) *AttendanceService {
	return &AttendanceService{
		reconciler:  reconciler,
		coordinator: coordinator,
		monitor:     monitor,
		cache:       cache,
		logger:      log,
	}
}

// Mark replaces the attendance of key with entries.
func (s *AttendanceService) Mark(ctx context.Context, key models.ServiceKey, entries map[string]models.AttendanceStatus) (models.ReconcileResult, error) {
	log := logger.FromContext(ctx)

	if err := validateBatch(key, entries); err != nil {
		return models.ReconcileResult{}, err
	}

	if s.monitor.IsOnline() {
		result, err := s.reconciler.Replace(ctx, key, entries)
		if err == nil || !adapter.IsTransient(err) {
			return result, err
		}
		log.Warn().Err(err).Str("func", "AttendanceService.Mark").Str("service_key", key.String()).Msg("remote unavailable, queueing attendance")
	}

	return s.queue(ctx, key, entries)
}

func (s *AttendanceService) queue(ctx context.Context, key models.ServiceKey, entries map[string]models.AttendanceStatus) (models.ReconcileResult, error) {
	records, warnings, err := s.reconciler.resolve(ctx, key, entries)
	if err != nil {
		return models.ReconcileResult{Key: key, Warnings: warnings}, err
	}

	if err = s.cache.ReplaceWhere(ctx, matchKey(key), records); err != nil {
		return models.ReconcileResult{Key: key, Warnings: warnings}, err
	}

	if _, err = s.coordinator.Enqueue(ctx, models.CollectionAttendance, models.ActionReplace, models.AttendanceBatch{Key: key, Entries: entries}); err != nil {
		return models.ReconcileResult{Key: key, Warnings: warnings}, err
	}

	return models.ReconcileResult{
		Key:      key,
		Warnings: warnings,
		Records:  records,
		Queued:   true,
	}, nil
}

// ForService returns the locally cached attendance of key.
func (s *AttendanceService) ForService(ctx context.Context, key models.ServiceKey) ([]models.AttendanceRecord, error) {
	all, err := s.cache.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	match := matchKey(key)
	out := make([]models.AttendanceRecord, 0)
	for _, rec := range all {
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Delete removes one attendance record. Offline the record is removed from
// the local cache and the remote deletion is queued.
func (s *AttendanceService) Delete(ctx context.Context, id models.ID) error {
	if s.monitor.IsOnline() {
		err := s.reconciler.DeleteRecord(ctx, id)
		if err == nil || !adapter.IsTransient(err) {
			return err
		}
	}

	if err := s.cache.Delete(ctx, id); err != nil {
		return err
	}
	_, err := s.coordinator.Enqueue(ctx, models.CollectionAttendance, models.ActionDelete, models.DeletePayload{ID: id})
	return err
}
