// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the lifecycle contract of the client runtime.
type Client interface {
	// Run starts the background workers and blocks until ctx is cancelled
	// or a worker fails.
	Run(ctx context.Context) error

	// Close flushes local stores and releases the database.
	Close(ctx context.Context) error
}
