package connectivity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/mock"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestProber_Probe_SetsMonitor(t *testing.T) {
	m := NewMonitor(false, logger.Nop())
	var fail atomic.Bool
	p := NewProber(pingerFunc(func(context.Context) error {
		if fail.Load() {
			return errors.New("connection refused")
		}
		return nil
	}), m, time.Second, logger.Nop())

	assert.True(t, p.Probe(context.Background()))
	assert.True(t, m.IsOnline())

	fail.Store(true)
	assert.False(t, p.Probe(context.Background()))
	assert.False(t, m.IsOnline())
}

func TestProber_Run_ProbesImmediatelyAndOnInterval(t *testing.T) {
	m := NewMonitor(false, logger.Nop())
	var calls atomic.Int32
	p := NewProber(pingerFunc(func(context.Context) error {
		calls.Add(1)
		return nil
	}), m, 20*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(70 * time.Millisecond)
	cancel()

	assert.NoError(t, <-done)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
	assert.True(t, m.IsOnline())
}

func TestProber_Probe_CancelledKeepsState(t *testing.T) {
	m := NewMonitor(true, logger.Nop())
	p := NewProber(pingerFunc(func(ctx context.Context) error {
		return ctx.Err()
	}), m, time.Second, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, p.Probe(ctx))
	assert.True(t, m.IsOnline())
}

func TestProber_Probe_EdgesReachSubscribers(t *testing.T) {
	ctrl := gomock.NewController(t)
	pinger := mock.NewMockPinger(ctrl)
	gomock.InOrder(
		pinger.EXPECT().Ping(gomock.Any()).Return(nil),
		pinger.EXPECT().Ping(gomock.Any()).Return(errors.New("503 service unavailable")),
	)

	m := NewMonitor(false, logger.Nop())
	edges, unsubscribe := m.Subscribe()
	defer unsubscribe()

	p := NewProber(pinger, m, time.Second, logger.Nop())

	p.Probe(context.Background())
	assert.True(t, <-edges)

	p.Probe(context.Background())
	assert.False(t, <-edges)
}
