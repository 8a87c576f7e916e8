// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package connectivity

import (
	"sync"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
)

// Monitor is an edge-triggered online/offline state holder.
// It is safe for concurrent use.
type Monitor struct {
	mu            sync.Mutex
	probeOnline   bool
	forcedOffline bool
	subs          map[int]chan bool
	nextSubID     int

	logger *logger.Logger
}

// NewMonitor returns a monitor whose probe signal starts at probeOnline.
func NewMonitor(probeOnline bool, log *logger.Logger) *Monitor {
	return &Monitor{
		probeOnline: probeOnline,
		subs:        make(map[int]chan bool),
		logger:      log,
	}
}

// IsOnline returns the effective state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.effectiveLocked()
}

// Set records the result of a reachability probe.
func (m *Monitor) Set(online bool) {
	m.update(func() { m.probeOnline = online })
}

// SetForcedOffline records whether the host forces offline mode.
func (m *Monitor) SetForcedOffline(forced bool) {
	m.update(func() { m.forcedOffline = forced })
}

// Subscribe returns a channel receiving the effective state after each
// transition, and a function that unsubscribes and closes the channel.
//
// The channel holds at most one value: a slow subscriber sees the latest
// state, not every intermediate one.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	ch := make(chan bool, 1)
	m.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}

	return ch, cancel
}

func (m *Monitor) update(apply func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := m.effectiveLocked()
	apply()
	after := m.effectiveLocked()
	if before == after {
		return
	}

	m.logger.Info().Str("func", "Monitor.update").Bool("online", after).Bool("forced_offline", m.forcedOffline).Msg("connectivity changed")

	for _, ch := range m.subs {
		// replace a value the subscriber has not consumed yet
		select {
		case <-ch:
		default:
		}
		ch <- after
	}
}

func (m *Monitor) effectiveLocked() bool {
	return m.probeOnline && !m.forcedOffline
}
