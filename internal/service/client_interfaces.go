package service

import (
	"context"
	"encoding/json"

	"github.com/MKhiriev/go-flock-keeper/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_service_mock.go -package=mock

// SyncFunc pushes a whole list of pending operations to the remote side.
// It must return an error on any failure so that nothing is cleared.
type SyncFunc func(ctx context.Context, ops []models.PendingOperation) error

// IdentityResolver maps an opaque member reference (an id, an email or a
// display name) to the canonical member it denotes.
type IdentityResolver interface {
	// Resolve returns false when no member matches ref.
	Resolve(ctx context.Context, ref string) (models.CanonicalIdentity, bool, error)
}

// ConnectivityMonitor exposes the effective online state and its
// transitions.
type ConnectivityMonitor interface {
	IsOnline() bool
	Subscribe() (<-chan bool, func())
}

// IDGenerator issues identifiers for new records.
type IDGenerator interface {
	Generate() string
}

// BackupSource is a store that takes part in backup export and import.
type BackupSource interface {
	// Name is the top-level key of the store in a backup document.
	Name() string
	// Snapshot returns an addressable copy of the store contents: a slice
	// for collections and a pointer for singletons.
	Snapshot(ctx context.Context) (any, error)
	// PrepareRestore decodes raw without touching the store and returns the
	// function that applies it.
	PrepareRestore(raw json.RawMessage) (func(context.Context) error, error)
}
