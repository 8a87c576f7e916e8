package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// PendingOperationQueue is the durable FIFO log of not-yet-confirmed writes,
// stored in the pending_operations table of the client database.
//
// Operations are never deduplicated or coalesced: two operations against
// the same entity are both kept and replayed in enqueue order.
type PendingOperationQueue struct {
	*DB
}

// NewPendingOperationQueue returns the SQLite-backed queue.
func NewPendingOperationQueue(db *DB) *PendingOperationQueue {
	return &PendingOperationQueue{db}
}

// Enqueue appends an operation with a fresh id and the current timestamp.
func (q *PendingOperationQueue) Enqueue(ctx context.Context, entityType string, action models.Action, payload json.RawMessage) (models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	if !action.Valid() {
		return models.PendingOperation{}, fmt.Errorf("unknown action %q", action)
	}
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}

	op := models.PendingOperation{
		EntityType: entityType,
		Action:     action,
		Payload:    append(json.RawMessage(nil), payload...),
		EnqueuedAt: time.Now().UTC(),
	}

	// begin transaction
	tx, err := q.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "PendingOperationQueue.Enqueue").Msg("error during opening transaction")
		return models.PendingOperation{}, q.wrap(err, ErrBeginningTransaction)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, enqueuePendingOperation, op.EntityType, string(op.Action), []byte(op.Payload), op.EnqueuedAt.UnixNano())
	if err != nil {
		log.Err(err).Str("func", "PendingOperationQueue.Enqueue").Str("entity_type", entityType).Msg("error inserting pending operation")
		return models.PendingOperation{}, q.wrap(err, ErrExecutingStatement)
	}

	op.ID, err = result.LastInsertId()
	if err != nil {
		return models.PendingOperation{}, q.wrap(err, ErrExecutingStatement)
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "PendingOperationQueue.Enqueue").Msg("error committing transaction")
		return models.PendingOperation{}, q.wrap(err, ErrCommitingTransaction)
	}

	log.Debug().Str("func", "PendingOperationQueue.Enqueue").Int64("op_id", op.ID).Str("entity_type", entityType).Str("action", string(action)).Msg("operation enqueued")

	return op, nil
}

// ListPending returns every operation in enqueue order.
func (q *PendingOperationQueue) ListPending(ctx context.Context) ([]models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	rows, err := q.DB.QueryContext(ctx, listPendingOperations)
	if err != nil {
		log.Err(err).Str("func", "PendingOperationQueue.ListPending").Msg("error listing pending operations")
		return nil, q.wrap(err, ErrExecutingQuery)
	}
	defer rows.Close()

	ops := make([]models.PendingOperation, 0)
	for rows.Next() {
		var (
			op         models.PendingOperation
			action     string
			payload    []byte
			enqueuedAt int64
		)
		if err = rows.Scan(&op.ID, &op.EntityType, &action, &payload, &enqueuedAt); err != nil {
			log.Err(err).Str("func", "PendingOperationQueue.ListPending").Msg("error scanning pending operation")
			return nil, q.wrap(err, ErrScanningRows)
		}
		op.Action = models.Action(action)
		op.Payload = payload
		op.EnqueuedAt = time.Unix(0, enqueuedAt).UTC()
		ops = append(ops, op)
	}
	if err = rows.Err(); err != nil {
		return nil, q.wrap(err, ErrScanningRows)
	}

	return ops, nil
}

// Clear removes one operation. Clearing an absent id is a no-op.
func (q *PendingOperationQueue) Clear(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	if _, err := q.DB.ExecContext(ctx, clearPendingOperation, id); err != nil {
		log.Err(err).Str("func", "PendingOperationQueue.Clear").Int64("op_id", id).Msg("error clearing pending operation")
		return q.wrap(err, ErrExecutingStatement)
	}

	return nil
}

// Count returns the number of pending operations.
func (q *PendingOperationQueue) Count(ctx context.Context) (int, error) {
	var n int
	if err := q.DB.QueryRowContext(ctx, countPendingOperations).Scan(&n); err != nil {
		return 0, q.wrap(err, ErrExecutingQuery)
	}
	return n, nil
}
