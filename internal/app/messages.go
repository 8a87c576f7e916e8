// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the user-facing messages printed by the flock-keeper
// client commands.
//
// Keeping them in one place ensures consistent wording across commands.
package app

const (
	// MsgOffline is printed when a command runs while the system of record
	// is unreachable or offline mode is forced.
	MsgOffline = "offline: changes are kept locally and will sync when the connection returns"

	// MsgSyncSkipped is printed when a manual sync found nothing to do
	// because the client is offline or a pass is already running.
	MsgSyncSkipped = "sync skipped"

	// MsgSyncDone is printed after a manual sync pass.
	MsgSyncDone = "sync finished"

	// MsgSyncFailed prefixes the error of a failed pass. Pending operations
	// are kept.
	MsgSyncFailed = "sync failed, pending operations are kept"

	// MsgAttendanceQueued is printed when an attendance replacement was
	// stored locally instead of being reconciled with the system of record.
	MsgAttendanceQueued = "attendance saved locally and queued for sync"

	// MsgAttendanceSaved is printed after a successful reconciliation.
	MsgAttendanceSaved = "attendance saved"

	// MsgUnresolvedReference is printed for every attendance entry whose
	// member reference matched nobody.
	MsgUnresolvedReference = "unresolved member reference"

	// MsgBackupWritten is printed after a backup document was written.
	MsgBackupWritten = "backup written"

	// MsgBackupRestored is printed after an import, followed by the names
	// of the restored stores.
	MsgBackupRestored = "backup restored"

	// MsgSecretsNotRestored reminds the operator that password hashes and
	// other secrets are never exported and have to be set again.
	MsgSecretsNotRestored = "secrets are not part of backups; reset user passwords after a restore"
)
