// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	loadCollection = `
		SELECT payload
		FROM collections
		WHERE name = ?;`

	saveCollection = `
		INSERT INTO collections (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at;`

	enqueuePendingOperation = `
		INSERT INTO pending_operations (
			entity_type,
			action,
			payload,
			enqueued_at
		) VALUES (?, ?, ?, ?);`

	listPendingOperations = `
		SELECT
			id,
			entity_type,
			action,
			payload,
			enqueued_at
		FROM pending_operations
		ORDER BY id;`

	clearPendingOperation = `
		DELETE FROM pending_operations
		WHERE id = ?;`

	countPendingOperations = `
		SELECT COUNT(*)
		FROM pending_operations;`
)
