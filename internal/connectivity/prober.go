package connectivity

import (
	"context"
	"time"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
)

//go:generate mockgen -source=prober.go -destination=../mock/pinger_mock.go -package=mock

// Pinger checks reachability of the remote system of record.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober feeds a [Monitor] with the result of a [Pinger] probe taken
// immediately and then every interval.
type Prober struct {
	pinger   Pinger
	monitor  *Monitor
	interval time.Duration
	logger   *logger.Logger
}

// NewProber constructs a prober. interval also bounds a single probe.
func NewProber(pinger Pinger, monitor *Monitor, interval time.Duration, log *logger.Logger) *Prober {
	return &Prober{
		pinger:   pinger,
		monitor:  monitor,
		interval: interval,
		logger:   log,
	}
}

// Run probes until ctx is cancelled. It always returns nil.
func (p *Prober) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}

// Probe performs a single check and records the result.
func (p *Prober) Probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	err := p.pinger.Ping(probeCtx)
	if ctx.Err() != nil {
		// shutting down; keep the last known state
		return p.monitor.IsOnline()
	}
	if err != nil {
		p.logger.Debug().Err(err).Str("func", "Prober.Probe").Msg("remote unreachable")
	}

	p.monitor.Set(err == nil)
	return err == nil
}
