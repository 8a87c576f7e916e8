package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-flock-keeper/internal/adapter"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// OperationReplayer is the [SyncFunc] of the client: it replays pending
// operations against the remote store in queue order.
//
// Create inserts the payload record, Update replaces the remote record with
// the payload (last writer replaces), Delete removes the record and Replace
// reconciles an attendance batch. The first failure aborts the pass so the
// whole list is retried. An operation whose payload can never be decoded is
// logged and skipped.
type OperationReplayer struct {
	remote     adapter.RemoteStore
	reconciler *Reconciler

	logger *logger.Logger
}

// NewOperationReplayer creates a replayer.
func NewOperationReplayer(remote adapter.RemoteStore, reconciler *Reconciler, log *logger.Logger) *OperationReplayer {
	return &OperationReplayer{remote: remote, reconciler: reconciler, logger: log}
}

// Replay implements [SyncFunc].
func (p *OperationReplayer) Replay(ctx context.Context, ops []models.PendingOperation) error {
	log := logger.FromContext(ctx)

	for _, op := range ops {
		err := p.replayOne(ctx, op)
		if errors.Is(err, ErrInvalidPayload) {
			log.Error().Err(err).Str("func", "OperationReplayer.Replay").Int64("op_id", op.ID).
				Str("entity_type", op.EntityType).Str("action", string(op.Action)).
				Msg("operation can never be replayed, skipping")
			continue
		}
		if err != nil {
			return fmt.Errorf("replay operation %d (%s %s): %w", op.ID, op.Action, op.EntityType, err)
		}
	}

	return nil
}

func (p *OperationReplayer) replayOne(ctx context.Context, op models.PendingOperation) error {
	switch op.Action {
	case models.ActionCreate:
		record, err := remoteRecordOf(op)
		if err != nil {
			return err
		}
		_, err = p.remote.BulkInsert(ctx, op.EntityType, []models.RemoteRecord{record})
		return err

	case models.ActionUpdate:
		record, err := remoteRecordOf(op)
		if err != nil {
			return err
		}
		if err = p.remote.DeletePoint(ctx, op.EntityType, record.ID); err != nil {
			return err
		}
		_, err = p.remote.BulkInsert(ctx, op.EntityType, []models.RemoteRecord{record})
		return err

	case models.ActionDelete:
		var payload models.DeletePayload
		if err := json.Unmarshal(op.Payload, &payload); err != nil || payload.ID.IsZero() {
			return fmt.Errorf("%w: delete payload without id", ErrInvalidPayload)
		}
		return p.remote.DeletePoint(ctx, op.EntityType, payload.ID.String())

	case models.ActionReplace:
		if op.EntityType != models.CollectionAttendance {
			return fmt.Errorf("%w: replace of %q", ErrUnknownEntityType, op.EntityType)
		}
		var batch models.AttendanceBatch
		if err := json.Unmarshal(op.Payload, &batch); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		result, err := p.reconciler.Replace(ctx, batch.Key, batch.Entries)
		if errors.Is(err, ErrValidation) {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		if err == nil && len(result.Warnings) > 0 {
			p.logger.Warn().Str("func", "OperationReplayer.replayOne").Str("service_key", batch.Key.String()).Int("unresolved", len(result.Warnings)).Msg("queued attendance replayed with unresolved entries")
		}
		return err
	}

	return fmt.Errorf("%w: unknown action %q", ErrInvalidPayload, op.Action)
}

// remoteRecordOf wraps a create or update payload. The payload must be a
// JSON object carrying an "id".
func remoteRecordOf(op models.PendingOperation) (models.RemoteRecord, error) {
	var head struct {
		ID models.ID `json:"id"`
	}
	if err := json.Unmarshal(op.Payload, &head); err != nil {
		return models.RemoteRecord{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if head.ID.IsZero() {
		return models.RemoteRecord{}, fmt.Errorf("%w: record without id", ErrInvalidPayload)
	}

	return models.RemoteRecord{
		ID:         head.ID.String(),
		Collection: op.EntityType,
		Payload:    op.Payload,
		CreatedAt:  op.EnqueuedAt,
	}, nil
}
