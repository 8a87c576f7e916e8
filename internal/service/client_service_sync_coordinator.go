// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// DefaultSyncInterval is used when the coordinator is built with a
// non-positive interval.
const DefaultSyncInterval = 5 * time.Minute

// SyncCoordinator drains the pending operation queue through a [SyncFunc].
//
// It is Idle or Syncing. A pass starts on a ticker, on SyncNow and on every
// offline to online transition of the monitor, but only while online; a
// trigger that arrives while a pass is running is skipped. A pass hands the
// whole pending list to the sync function and clears every operation only
// if it succeeds. There is no backoff: failed passes are retried on the next
// trigger.
type SyncCoordinator struct {
	queue    store.OperationQueue
	monitor  ConnectivityMonitor
	syncFn   SyncFunc
	interval time.Duration

	syncing atomic.Bool

	stateMu      sync.RWMutex
	pendingCount int
	lastSyncAt   *time.Time
	lastError    string

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewSyncCoordinator creates a coordinator. It is idle until Start or Run
// is called; SyncNow and Enqueue work without starting it.
func NewSyncCoordinator(queue store.OperationQueue, monitor ConnectivityMonitor, syncFn SyncFunc, interval time.Duration, log *logger.Logger) *SyncCoordinator {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}

	return &SyncCoordinator{
		queue:    queue,
		monitor:  monitor,
		syncFn:   syncFn,
		interval: interval,
		logger:   log,
	}
}

// Run starts the coordinator, blocks until ctx is cancelled and stops it.
func (c *SyncCoordinator) Run(ctx context.Context) error {
	c.Start(ctx)
	<-ctx.Done()
	c.Stop()
	return nil
}

// Start stops any previously running loop, then launches a background
// goroutine that triggers a pass on every tick and on every online edge.
// The goroutine exits when ctx is cancelled or Stop is called.
func (c *SyncCoordinator) Start(ctx context.Context) {
	c.Stop()

	c.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	if err := c.RefreshPendingCount(jobCtx); err != nil {
		c.logger.Err(err).Str("func", "SyncCoordinator.Start").Msg("error counting pending operations")
	}

	edges, unsubscribe := c.monitor.Subscribe()

	go func() {
		defer c.wg.Done()
		defer unsubscribe()

		t := time.NewTicker(c.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				_ = c.SyncNow(jobCtx)
			case online, ok := <-edges:
				if !ok {
					return
				}
				if online {
					c.logger.Info().Str("func", "SyncCoordinator.Start").Msg("back online, syncing pending operations")
					_ = c.SyncNow(jobCtx)
				}
			}
		}
	}()
}

// Stop cancels the background goroutine and blocks until it has exited.
// Safe to call when the coordinator is not running.
func (c *SyncCoordinator) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// SyncNow runs one pass. It is a no-op returning nil when offline or when
// another pass is already running. A failed sync function leaves the queue
// untouched and is returned wrapped in [ErrTransientSync].
func (c *SyncCoordinator) SyncNow(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if !c.monitor.IsOnline() {
		log.Debug().Str("func", "SyncCoordinator.SyncNow").Msg("offline, sync skipped")
		return nil
	}
	if !c.syncing.CompareAndSwap(false, true) {
		log.Debug().Str("func", "SyncCoordinator.SyncNow").Msg("sync already running, skipped")
		return nil
	}
	defer c.syncing.Store(false)

	return c.pass(ctx)
}

func (c *SyncCoordinator) pass(ctx context.Context) error {
	log := logger.FromContext(ctx)

	ops, err := c.queue.ListPending(ctx)
	if err != nil {
		c.recordFailure(err)
		log.Err(err).Str("func", "SyncCoordinator.pass").Msg("error listing pending operations")
		return fmt.Errorf("list pending operations: %w", err)
	}

	if len(ops) > 0 {
		if err = c.syncFn(ctx, ops); err != nil {
			c.recordFailure(err)
			log.Err(err).Str("func", "SyncCoordinator.pass").Int("operations", len(ops)).Msg("sync pass failed, operations kept")
			return fmt.Errorf("%w: %w", ErrTransientSync, err)
		}

		for _, op := range ops {
			if err = c.queue.Clear(ctx, op.ID); err != nil {
				c.recordFailure(err)
				log.Err(err).Str("func", "SyncCoordinator.pass").Int64("op_id", op.ID).Msg("error clearing synced operation")
				return fmt.Errorf("clear operation %d: %w", op.ID, err)
			}
			if err = c.RefreshPendingCount(ctx); err != nil {
				log.Err(err).Str("func", "SyncCoordinator.pass").Msg("error counting pending operations")
			}
		}
	}

	if err = c.RefreshPendingCount(ctx); err != nil {
		log.Err(err).Str("func", "SyncCoordinator.pass").Msg("error counting pending operations")
	}
	c.recordSuccess()
	log.Info().Str("func", "SyncCoordinator.pass").Int("synced", len(ops)).Msg("sync pass finished")

	return nil
}

// Enqueue appends an operation whose payload is the JSON encoding of
// payload and refreshes the pending count.
func (c *SyncCoordinator) Enqueue(ctx context.Context, entityType string, action models.Action, payload any) (models.PendingOperation, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.PendingOperation{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	op, err := c.queue.Enqueue(ctx, entityType, action, raw)
	if err != nil {
		return models.PendingOperation{}, fmt.Errorf("enqueue %s %s: %w", action, entityType, err)
	}

	if err = c.RefreshPendingCount(ctx); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "SyncCoordinator.Enqueue").Msg("error counting pending operations")
	}

	return op, nil
}

// RefreshPendingCount re-reads the queue length.
func (c *SyncCoordinator) RefreshPendingCount(ctx context.Context) error {
	n, err := c.queue.Count(ctx)
	if err != nil {
		return err
	}

	c.stateMu.Lock()
	c.pendingCount = n
	c.stateMu.Unlock()

	return nil
}

// State returns the observable sync state.
func (c *SyncCoordinator) State() models.SyncState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	state := models.SyncState{
		IsOnline:     c.monitor.IsOnline(),
		IsSyncing:    c.syncing.Load(),
		PendingCount: c.pendingCount,
		LastError:    c.lastError,
	}
	if c.lastSyncAt != nil {
		at := *c.lastSyncAt
		state.LastSyncAt = &at
	}

	return state
}

func (c *SyncCoordinator) recordSuccess() {
	now := time.Now().UTC()

	c.stateMu.Lock()
	c.lastSyncAt = &now
	c.lastError = ""
	c.stateMu.Unlock()
}

func (c *SyncCoordinator) recordFailure(err error) {
	c.stateMu.Lock()
	c.lastError = err.Error()
	c.stateMu.Unlock()
}
