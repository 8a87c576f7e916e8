package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-flock-keeper/internal/connectivity"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/mock"
	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/models"
)

func newTestMemberService(t *testing.T, ids IDGenerator) (*CollectionService[models.Member], *store.ClientStorages, *SyncCoordinator) {
	t.Helper()

	storages := newTestStorages(t)
	monitor := connectivity.NewMonitor(false, logger.Nop())
	coordinator := NewSyncCoordinator(storages.Queue, monitor, (&recordingSync{}).sync, time.Hour, logger.Nop())

	svc := NewCollectionService(storages.Members, coordinator, ids, func(m *models.Member, id models.ID) { m.ID = id }, logger.Nop())
	return svc, storages, coordinator
}

func TestCollectionService_Create_AssignsID(t *testing.T) {
	ctrl := gomock.NewController(t)
	ids := mock.NewMockIDGenerator(ctrl)
	ids.EXPECT().Generate().Return("0192f0c4-0000-7000-8000-000000000001")

	svc, storages, coordinator := newTestMemberService(t, ids)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.Member{FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, models.ID("0192f0c4-0000-7000-8000-000000000001"), created.ID)

	// an explicit id is kept
	kept, err := svc.Create(ctx, models.Member{ID: "42", FirstName: "Grace"})
	require.NoError(t, err)
	assert.Equal(t, models.ID("42"), kept.ID)

	pending, err := storages.Queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, models.ActionCreate, pending[0].Action)
	assert.Equal(t, models.CollectionMembers, pending[0].EntityType)
	assert.Equal(t, 2, coordinator.State().PendingCount)
}

func TestCollectionService_Get(t *testing.T) {
	svc, _, _ := newTestMemberService(t, mock.NewMockIDGenerator(gomock.NewController(t)))
	ctx := context.Background()

	_, err := svc.Create(ctx, models.Member{ID: "1", FirstName: "Ada"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, models.NewID(" 01 "))
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)

	_, err = svc.Get(ctx, "2")
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCollectionService_Update_QueuesMergedRecord(t *testing.T) {
	svc, storages, _ := newTestMemberService(t, mock.NewMockIDGenerator(gomock.NewController(t)))
	ctx := context.Background()

	_, err := svc.Create(ctx, models.Member{ID: "1", FirstName: "Ada", LastName: "Byron", Email: "ada@example.org"})
	require.NoError(t, err)

	merged, err := svc.Update(ctx, "1", models.Member{LastName: "Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", merged.FirstName)
	assert.Equal(t, "Lovelace", merged.LastName)

	pending, err := storages.Queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, models.ActionUpdate, pending[1].Action)

	var queued models.Member
	require.NoError(t, json.Unmarshal(pending[1].Payload, &queued))
	assert.Equal(t, merged, queued, "the full record is queued")
}

func TestCollectionService_Update_Missing(t *testing.T) {
	svc, storages, _ := newTestMemberService(t, mock.NewMockIDGenerator(gomock.NewController(t)))
	ctx := context.Background()

	_, err := svc.Update(ctx, "404", models.Member{FirstName: "Nobody"})
	require.ErrorIs(t, err, ErrRecordNotFound)

	n, err := storages.Queue.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCollectionService_Update_IDMismatch(t *testing.T) {
	svc, _, _ := newTestMemberService(t, mock.NewMockIDGenerator(gomock.NewController(t)))

	_, err := svc.Update(context.Background(), "1", models.Member{ID: "2"})
	require.ErrorIs(t, err, store.ErrIDMismatch)
}

func TestCollectionService_Delete(t *testing.T) {
	svc, storages, _ := newTestMemberService(t, mock.NewMockIDGenerator(gomock.NewController(t)))
	ctx := context.Background()

	_, err := svc.Create(ctx, models.Member{ID: "1", FirstName: "Ada"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "1"))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	pending, err := storages.Queue.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, models.ActionDelete, pending[1].Action)
	assert.JSONEq(t, `{"id":"1"}`, string(pending[1].Payload))
}
