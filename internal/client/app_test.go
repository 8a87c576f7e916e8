package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-flock-keeper/internal/config"
	"github.com/MKhiriev/go-flock-keeper/internal/connectivity"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/mock"
	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/models"
)

func newTestConfig(t *testing.T) *config.ClientConfig {
	t.Helper()

	dir := t.TempDir()
	return &config.ClientConfig{
		App: config.ClientApp{
			TokenSignKey:   "test-sign-key",
			TokenIssuer:    "flock-keeper",
			TokenDuration:  time.Hour,
			InstallationID: "installation-1",
		},
		Adapter: config.ClientAdapter{HTTPAddress: "localhost:8080", RequestTimeout: time.Second},
		Storage: config.ClientStorage{DB: config.ClientDB{DSN: filepath.Join(dir, "client.db")}},
		Workers: config.ClientWorkers{
			SyncInterval:     time.Hour,
			ProbeInterval:    time.Hour,
			OfflineMarkerDir: filepath.Join(dir, "markers"),
		},
	}
}

func newTestApp(t *testing.T, cfg *config.ClientConfig, remote *mock.MockRemoteStore) *App {
	t.Helper()

	app, err := newApp(context.Background(), cfg, remote, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	return app
}

func TestNewApp_InvalidAddress(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Adapter.HTTPAddress = ""

	app, err := NewApp(context.Background(), cfg, logger.Nop())

	require.Error(t, err)
	assert.Nil(t, app)
}

func TestNewApp_SeedsStores(t *testing.T) {
	app := newTestApp(t, newTestConfig(t), mock.NewMockRemoteStore(gomock.NewController(t)))

	services, err := app.Services().Services.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, services, len(store.DefaultSeeds().Services))
}

func TestApp_Connect(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		withMarker bool
		want       bool
	}{
		{name: "reachable", want: true},
		{name: "unreachable", pingErr: errors.New("connection refused"), want: false},
		{name: "forced offline", withMarker: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			remote := mock.NewMockRemoteStore(gomock.NewController(t))
			remote.EXPECT().Ping(gomock.Any()).Return(tt.pingErr)

			if tt.withMarker {
				require.NoError(t, os.MkdirAll(cfg.Workers.OfflineMarkerDir, 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(cfg.Workers.OfflineMarkerDir, connectivity.MarkerFileName), nil, 0o600))
			}

			app := newTestApp(t, cfg, remote)

			assert.Equal(t, tt.want, app.Connect(context.Background()))
		})
	}
}

func TestApp_Status_CountsPendingWrites(t *testing.T) {
	app := newTestApp(t, newTestConfig(t), mock.NewMockRemoteStore(gomock.NewController(t)))
	ctx := context.Background()

	_, err := app.Services().Members.Create(ctx, models.Member{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)

	state, err := app.Status(ctx)

	require.NoError(t, err)
	assert.False(t, state.IsOnline)
	assert.Equal(t, 1, state.PendingCount)
}

func TestApp_Run_StopsOnCancel(t *testing.T) {
	remote := mock.NewMockRemoteStore(gomock.NewController(t))
	remote.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused")).AnyTimes()

	app := newTestApp(t, newTestConfig(t), remote)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
