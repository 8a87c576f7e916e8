package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-flock-keeper/internal/config"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/models"
)

func TestNewClientStorages_InitSeedsAndCloseFlushes(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "flock.db")
	ctx := context.Background()

	storages, err := NewClientStorages(ctx, config.ClientStorage{DB: config.ClientDB{DSN: dsn}}, DefaultSeeds(), logger.Nop())
	require.NoError(t, err)
	require.NoError(t, storages.Init(ctx))

	services, err := storages.Services.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 3)

	settings, err := storages.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USD", settings.Currency)

	require.NoError(t, storages.Members.Add(ctx, models.Member{ID: "1", FirstName: "Ada"}))
	require.NoError(t, storages.Close(ctx))

	reopened, err := NewClientStorages(ctx, config.ClientStorage{DB: config.ClientDB{DSN: dsn}}, Seeds{}, logger.Nop())
	require.NoError(t, err)
	defer reopened.Close(ctx)

	members, err := reopened.Members.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Ada", members[0].FirstName)

	// seeds only apply to collections that were never written
	services, err = reopened.Services.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 3)
}

func TestClientStorages_FlushSkipsUnloadedStores(t *testing.T) {
	repo := newFlakyRepo()
	storages := &ClientStorages{
		Members:      NewKeyedStore[models.Member](models.CollectionMembers, repo, nil, logger.Nop()),
		Services:     NewKeyedStore[models.Service](models.CollectionServices, repo, nil, logger.Nop()),
		Transactions: NewKeyedStore[models.Transaction](models.CollectionTransactions, repo, nil, logger.Nop()),
		Users:        NewKeyedStore[models.User](models.CollectionUsers, repo, nil, logger.Nop()),
		Attendance:   NewKeyedStore[models.AttendanceRecord](models.CollectionAttendance, repo, nil, logger.Nop()),
		Settings:     NewSingletonStore(models.CollectionSettings, repo, models.Settings{}, logger.Nop()),
	}

	require.NoError(t, storages.Flush(context.Background()))
	assert.Zero(t, repo.saves)
}
