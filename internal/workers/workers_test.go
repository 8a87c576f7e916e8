// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// countingWorker tracks how many times Run was called and blocks until
// its context is cancelled.
type countingWorker struct {
	runCount atomic.Int32
}

func (m *countingWorker) Run(ctx context.Context) error {
	m.runCount.Add(1)
	<-ctx.Done()
	return nil
}

func runWithTimeout(t *testing.T, ws *Workers, ctx context.Context) error {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- ws.Run(ctx) }()

	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1, w2, w3 := &countingWorker{}, &countingWorker{}, &countingWorker{}
	ws := New().Add("w1", w1).Add("w2", w2).Add("w3", w3)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for w1.runCount.Load() == 0 || w2.runCount.Load() == 0 || w3.runCount.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	if err := runWithTimeout(t, ws, ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, w := range []*countingWorker{w1, w2, w3} {
		if got := w.runCount.Load(); got != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, got)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	if err := New().Run(context.Background()); err != nil {
		t.Errorf("expected nil error for empty set, got %v", err)
	}
}

func TestWorkers_Run_Nil(t *testing.T) {
	ws := &Workers{}

	// Should not panic when workers field is nil
	if err := ws.Run(context.Background()); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestWorkers_Run_FailureCancelsOthers(t *testing.T) {
	boom := errors.New("boom")
	blocked := &countingWorker{}

	ws := New().
		Add("blocked", blocked).
		Add("failing", WorkerFunc(func(context.Context) error { return boom }))

	err := runWithTimeout(t, ws, context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := err.Error(); got != "worker failing: boom" {
		t.Errorf("unexpected error message %q", got)
	}
}

func TestWorkers_Run_FinishedWorkerDoesNotStopOthers(t *testing.T) {
	blocked := &countingWorker{}
	var finished atomic.Bool

	ws := New().
		Add("oneshot", WorkerFunc(func(context.Context) error { finished.Store(true); return nil })).
		Add("blocked", blocked)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for !finished.Load() || blocked.runCount.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	if err := runWithTimeout(t, ws, ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
