package models

import (
	"encoding/json"
	"time"
)

// Action is the kind of write a [PendingOperation] replays.
type Action string

const (
	// ActionCreate inserts the payload record into the remote collection.
	ActionCreate Action = "create"

	// ActionUpdate replaces the remote record with the payload record
	// (last writer replaces).
	ActionUpdate Action = "update"

	// ActionDelete removes the remote record whose id is the payload.
	ActionDelete Action = "delete"

	// ActionReplace replaces a key-scoped remote record set with the
	// [AttendanceBatch] payload.
	ActionReplace Action = "replace"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionReplace:
		return true
	}
	return false
}

// PendingOperation is a durable, not-yet-confirmed write.
//
// Operations are created when a write cannot be confirmed immediately and
// are removed only after a sync pass containing them succeeds. ID grows
// monotonically and defines replay order.
type PendingOperation struct {
	ID         int64           `json:"id"`
	EntityType string          `json:"entity_type"`
	Action     Action          `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// DeletePayload is the payload of an [ActionDelete] operation.
type DeletePayload struct {
	ID ID `json:"id"`
}

// SyncState is the observable aggregate of connectivity, coordinator phase
// and queue length. It is derived and never persisted.
type SyncState struct {
	IsOnline     bool       `json:"is_online"`
	IsSyncing    bool       `json:"is_syncing"`
	PendingCount int        `json:"pending_count"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}
