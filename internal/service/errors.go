package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-flock-keeper/models"
)

var (
	// ErrValidation is returned for malformed input: a bad backup document,
	// an invalid record or an unknown attendance status.
	ErrValidation = errors.New("validation failed")

	// ErrTransientSync wraps the failure of a sync pass. Pending operations
	// are kept and retried on the next trigger.
	ErrTransientSync = errors.New("sync pass failed")

	// ErrRemoteWrite marks a reconciliation whose remote write failed.
	ErrRemoteWrite = errors.New("remote write failed")

	ErrInvalidServiceKey       = errors.New("invalid service key")
	ErrInvalidAttendanceStatus = errors.New("invalid attendance status")
	ErrInvalidPayload          = errors.New("invalid operation payload")
	ErrUnknownEntityType       = errors.New("unknown entity type")
	ErrRecordNotFound          = errors.New("record not found")

	ErrEmptyPassword = errors.New("password is empty")
	ErrWrongPassword = errors.New("wrong password")

	ErrBackupDisabled = errors.New("backup directory is not configured")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)

// ReconcileStage names the step of a reconciliation that failed.
type ReconcileStage string

const (
	StageDeleteByKey ReconcileStage = "delete-by-key"
	StageResolve     ReconcileStage = "resolve"
	StageBulkInsert  ReconcileStage = "bulk-insert"
	StageRefetch     ReconcileStage = "refetch"
	StageLocalCache  ReconcileStage = "local-cache"
)

func (s ReconcileStage) remote() bool {
	switch s {
	case StageDeleteByKey, StageBulkInsert, StageRefetch:
		return true
	}
	return false
}

// ReconcileError is returned when a replace-by-key reconciliation fails.
// Warnings holds the entries that could not be resolved before the failure,
// so callers can tell "some entries unresolved" apart from "write failed".
//
// A failure of a remote stage matches [ErrRemoteWrite].
type ReconcileError struct {
	Key      models.ServiceKey
	Stage    ReconcileStage
	Warnings []models.ResolutionWarning
	Err      error
}

func (e *ReconcileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "reconcile %s: %s: %v", e.Key, e.Stage, e.Err)
	if len(e.Warnings) > 0 {
		fmt.Fprintf(&b, " (%d unresolved)", len(e.Warnings))
	}
	return b.String()
}

func (e *ReconcileError) Unwrap() []error {
	if e.Stage.remote() {
		return []error{ErrRemoteWrite, e.Err}
	}
	return []error{e.Err}
}
