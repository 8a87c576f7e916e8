package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-flock-keeper/internal/adapter"
	"github.com/MKhiriev/go-flock-keeper/internal/config"
	"github.com/MKhiriev/go-flock-keeper/internal/connectivity"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/service"
	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/internal/workers"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// App is the wired client runtime.
type App struct {
	storages *store.ClientStorages
	monitor  *connectivity.Monitor
	prober   *connectivity.Prober
	marker   *connectivity.MarkerWatcher
	services *service.ClientServices

	logger *logger.Logger
}

var _ Client = (*App)(nil)

// NewApp opens and initializes the local stores and wires every client
// component over them. The monitor starts offline until the first probe.
func NewApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	log.Info().Str("func", "NewApp").Msg("creating client app...")

	remote, err := adapter.NewHTTPRemoteStore(cfg.Adapter, cfg.App, log)
	if err != nil {
		return nil, fmt.Errorf("create remote store: %w", err)
	}

	return newApp(ctx, cfg, remote, log)
}

func newApp(ctx context.Context, cfg *config.ClientConfig, remote adapter.RemoteStore, log *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, store.DefaultSeeds(), log)
	if err != nil {
		return nil, fmt.Errorf("create local storages: %w", err)
	}
	if err = storages.Init(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("init local storages: %w", err), storages.Close(ctx))
	}

	monitor := connectivity.NewMonitor(false, log)

	app := &App{
		storages: storages,
		monitor:  monitor,
		prober:   connectivity.NewProber(remote, monitor, cfg.Workers.ProbeInterval, log),
		services: service.NewClientServices(storages, remote, monitor, cfg, log),
		logger:   log,
	}
	if cfg.Workers.OfflineMarkerDir != "" {
		app.marker = connectivity.NewMarkerWatcher(cfg.Workers.OfflineMarkerDir, monitor, log)
	}

	return app, nil
}

// Services returns the client services.
func (a *App) Services() *service.ClientServices {
	return a.services
}

// Connect applies the offline marker and takes one reachability probe. It
// is used by one-shot commands that do not start the workers.
func (a *App) Connect(ctx context.Context) bool {
	if a.marker != nil {
		a.marker.Refresh()
	}
	a.prober.Probe(ctx)

	return a.monitor.IsOnline()
}

// Status returns the current sync state with a fresh pending count.
func (a *App) Status(ctx context.Context) (models.SyncState, error) {
	if err := a.services.Coordinator.RefreshPendingCount(ctx); err != nil {
		return models.SyncState{}, err
	}
	return a.services.Coordinator.State(), nil
}

// Run starts the prober, the marker watcher, the sync coordinator and the
// backup job, and blocks until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	w := workers.New().
		Add("connectivity-prober", a.prober).
		Add("sync-coordinator", a.services.Coordinator).
		Add("backup-job", a.services.BackupJob)
	if a.marker != nil {
		w.Add("offline-marker", a.marker)
	}

	a.logger.Info().Str("func", "App.Run").Msg("client workers started")
	err := w.Run(ctx)
	a.logger.Info().Str("func", "App.Run").Msg("client workers stopped")

	return err
}

// Close flushes the local stores and closes the database.
func (a *App) Close(ctx context.Context) error {
	return a.storages.Close(ctx)
}
