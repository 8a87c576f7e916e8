// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package connectivity

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
)

func startWatcher(t *testing.T, w *MarkerWatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
}

func TestMarkerWatcher_FollowsMarkerFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "signals")
	m := NewMonitor(true, logger.Nop())
	w := NewMarkerWatcher(dir, m, logger.Nop())
	startWatcher(t, w)

	require.Eventually(t, func() bool {
		_, err := os.Stat(dir)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, os.WriteFile(w.Path(), nil, 0o644))
	assert.Eventually(t, func() bool { return !m.IsOnline() }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(w.Path()))
	assert.Eventually(t, m.IsOnline, 2*time.Second, 10*time.Millisecond)
}

func TestMarkerWatcher_AppliesExistingMarker(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MarkerFileName), nil, 0o644))

	m := NewMonitor(true, logger.Nop())
	startWatcher(t, NewMarkerWatcher(dir, m, logger.Nop()))

	assert.Eventually(t, func() bool { return !m.IsOnline() }, time.Second, 5*time.Millisecond)
}

func TestMarkerWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewMonitor(true, logger.Nop())
	startWatcher(t, NewMarkerWatcher(dir, m, logger.Nop()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "offline.tmp"), nil, 0o644))
	time.Sleep(50 * time.Millisecond)

	assert.True(t, m.IsOnline())
}
