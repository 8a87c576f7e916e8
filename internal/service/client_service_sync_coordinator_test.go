// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-flock-keeper/internal/connectivity"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/mock"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// recordingSync is a SyncFunc that records every batch it receives.
type recordingSync struct {
	mu      sync.Mutex
	batches [][]models.PendingOperation
	err     error
}

func (r *recordingSync) sync(_ context.Context, ops []models.PendingOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, ops)
	return r.err
}

func (r *recordingSync) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func newTestCoordinator(t *testing.T, online bool, syncFn SyncFunc) (*SyncCoordinator, *connectivity.Monitor) {
	t.Helper()

	storages := newTestStorages(t)
	monitor := connectivity.NewMonitor(online, logger.Nop())

	return NewSyncCoordinator(storages.Queue, monitor, syncFn, time.Hour, logger.Nop()), monitor
}

// ── SyncNow ──────────────────────────────────────────────────────────────────

func TestSyncCoordinator_SyncNow_OfflineIsNoop(t *testing.T) {
	rec := &recordingSync{}
	c, _ := newTestCoordinator(t, false, rec.sync)
	ctx := context.Background()

	_, err := c.Enqueue(ctx, models.CollectionMembers, models.ActionCreate, models.Member{ID: "1"})
	require.NoError(t, err)

	require.NoError(t, c.SyncNow(ctx))
	assert.Equal(t, 0, rec.calls())
	assert.Equal(t, 1, c.State().PendingCount)
	assert.Nil(t, c.State().LastSyncAt)
}

func TestSyncCoordinator_SyncNow_EmptyQueue(t *testing.T) {
	rec := &recordingSync{}
	c, _ := newTestCoordinator(t, true, rec.sync)

	require.NoError(t, c.SyncNow(context.Background()))

	assert.Equal(t, 0, rec.calls(), "sync function is not called without operations")
	assert.NotNil(t, c.State().LastSyncAt)
}

func TestSyncCoordinator_SyncNow_SuccessClearsInOrder(t *testing.T) {
	rec := &recordingSync{}
	c, _ := newTestCoordinator(t, true, rec.sync)
	ctx := context.Background()

	first, err := c.Enqueue(ctx, models.CollectionMembers, models.ActionCreate, models.Member{ID: "1"})
	require.NoError(t, err)
	second, err := c.Enqueue(ctx, models.CollectionMembers, models.ActionDelete, models.DeletePayload{ID: "1"})
	require.NoError(t, err)
	assert.Equal(t, 2, c.State().PendingCount)

	require.NoError(t, c.SyncNow(ctx))

	require.Equal(t, 1, rec.calls())
	batch := rec.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, first.ID, batch[0].ID)
	assert.Equal(t, second.ID, batch[1].ID)

	state := c.State()
	assert.Equal(t, 0, state.PendingCount)
	assert.Empty(t, state.LastError)
	assert.NotNil(t, state.LastSyncAt)
	assert.False(t, state.IsSyncing)
}

func TestSyncCoordinator_SyncNow_FailureKeepsQueue(t *testing.T) {
	rec := &recordingSync{err: errors.New("remote down")}
	c, _ := newTestCoordinator(t, true, rec.sync)
	ctx := context.Background()

	_, err := c.Enqueue(ctx, models.CollectionMembers, models.ActionCreate, models.Member{ID: "1"})
	require.NoError(t, err)
	_, err = c.Enqueue(ctx, models.CollectionMembers, models.ActionCreate, models.Member{ID: "2"})
	require.NoError(t, err)

	err = c.SyncNow(ctx)
	require.ErrorIs(t, err, ErrTransientSync)
	assert.Equal(t, 2, c.State().PendingCount)
	assert.Contains(t, c.State().LastError, "remote down")

	// the next successful pass drains everything
	rec.err = nil
	require.NoError(t, c.SyncNow(ctx))
	assert.Equal(t, 0, c.State().PendingCount)
	assert.Empty(t, c.State().LastError)
	require.Equal(t, 2, rec.calls())
	assert.Len(t, rec.batches[1], 2, "failed batch is retried whole")
}

func TestSyncCoordinator_SyncNow_SkipsWhileSyncing(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32

	slow := func(ctx context.Context, ops []models.PendingOperation) error {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return nil
	}

	c, _ := newTestCoordinator(t, true, slow)
	ctx := context.Background()
	_, err := c.Enqueue(ctx, models.CollectionMembers, models.ActionCreate, models.Member{ID: "1"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- c.SyncNow(ctx) }()
	<-started

	assert.True(t, c.State().IsSyncing)
	require.NoError(t, c.SyncNow(ctx), "a second trigger is skipped")

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, c.State().IsSyncing)
}

func TestSyncCoordinator_SyncNow_QueueErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	queue := mock.NewMockOperationQueue(ctrl)
	monitor := connectivity.NewMonitor(true, logger.Nop())
	rec := &recordingSync{}

	c := NewSyncCoordinator(queue, monitor, rec.sync, 0, logger.Nop())
	assert.Equal(t, DefaultSyncInterval, c.interval)

	ctx := context.Background()

	t.Run("list failure", func(t *testing.T) {
		queue.EXPECT().ListPending(gomock.Any()).Return(nil, errors.New("disk gone"))

		err := c.SyncNow(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrTransientSync)
		assert.Equal(t, 0, rec.calls())
	})

	t.Run("clear failure stops clearing", func(t *testing.T) {
		ops := []models.PendingOperation{{ID: 1}, {ID: 2}}
		queue.EXPECT().ListPending(gomock.Any()).Return(ops, nil)
		queue.EXPECT().Clear(gomock.Any(), int64(1)).Return(errors.New("locked"))

		err := c.SyncNow(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "clear operation 1")
	})
}

func TestSyncCoordinator_SyncNow_OfflineDoesNotTouchQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	queue := mock.NewMockOperationQueue(ctrl)
	monitor := mock.NewMockConnectivityMonitor(ctrl)
	monitor.EXPECT().IsOnline().Return(false)

	c := NewSyncCoordinator(queue, monitor, (&recordingSync{}).sync, time.Hour, logger.Nop())

	require.NoError(t, c.SyncNow(context.Background()))
}

// ── Enqueue ──────────────────────────────────────────────────────────────────

func TestSyncCoordinator_Enqueue_UnencodablePayload(t *testing.T) {
	c, _ := newTestCoordinator(t, false, (&recordingSync{}).sync)

	_, err := c.Enqueue(context.Background(), models.CollectionMembers, models.ActionCreate, make(chan int))
	require.ErrorIs(t, err, ErrInvalidPayload)
	assert.Equal(t, 0, c.State().PendingCount)
}

// ── Start / Stop ─────────────────────────────────────────────────────────────

func TestSyncCoordinator_Start_SyncsOnOnlineEdge(t *testing.T) {
	rec := &recordingSync{}
	c, monitor := newTestCoordinator(t, false, rec.sync)
	ctx := context.Background()

	_, err := c.Enqueue(ctx, models.CollectionMembers, models.ActionCreate, models.Member{ID: "1"})
	require.NoError(t, err)

	c.Start(ctx)
	defer c.Stop()

	monitor.Set(true)

	assert.Eventually(t, func() bool { return c.State().PendingCount == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, rec.calls())
}

func TestSyncCoordinator_Start_SyncsOnTick(t *testing.T) {
	rec := &recordingSync{}
	storages := newTestStorages(t)
	monitor := connectivity.NewMonitor(true, logger.Nop())
	c := NewSyncCoordinator(storages.Queue, monitor, rec.sync, 20*time.Millisecond, logger.Nop())
	ctx := context.Background()

	_, err := c.Enqueue(ctx, models.CollectionMembers, models.ActionCreate, models.Member{ID: "1"})
	require.NoError(t, err)

	c.Start(ctx)
	defer c.Stop()

	assert.Eventually(t, func() bool { return c.State().PendingCount == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSyncCoordinator_Run_StopsOnCancel(t *testing.T) {
	c, _ := newTestCoordinator(t, true, (&recordingSync{}).sync)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSyncCoordinator_Stop_NotStarted(t *testing.T) {
	c, _ := newTestCoordinator(t, true, (&recordingSync{}).sync)
	assert.NotPanics(t, c.Stop)
}
