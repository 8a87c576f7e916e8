package service

import (
	"github.com/MKhiriev/go-flock-keeper/internal/adapter"
	"github.com/MKhiriev/go-flock-keeper/internal/config"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/store"
	"github.com/MKhiriev/go-flock-keeper/internal/utils"
	"github.com/MKhiriev/go-flock-keeper/models"
)

// ClientServices groups every client-side service into a single value that
// is constructed once at startup and injected into the client application.
type ClientServices struct {
	Members      *CollectionService[models.Member]
	Services     *CollectionService[models.Service]
	Transactions *CollectionService[models.Transaction]
	Users        *UserService
	Attendance   *AttendanceService

	Reconciler  *Reconciler
	Coordinator *SyncCoordinator
	Backup      *BackupService
	BackupJob   *BackupJob
}

// NewClientServices wires the client services over storages and remote.
func NewClientServices(storages *store.ClientStorages, remote adapter.RemoteStore, monitor ConnectivityMonitor, cfg *config.ClientConfig, log *logger.Logger) *ClientServices {
	ids := utils.NewUUIDGenerator()

	resolver := NewMemberIdentityResolver(storages.Members)
	reconciler := NewReconciler(remote, resolver, storages.Attendance, log)
	replayer := NewOperationReplayer(remote, reconciler, log)
	coordinator := NewSyncCoordinator(storages.Queue, monitor, replayer.Replay, cfg.Workers.SyncInterval, log)

	backup := NewBackupService(log,
		storages.Members,
		storages.Services,
		storages.Transactions,
		storages.Users,
		storages.Attendance,
		storages.Settings,
	)

	return &ClientServices{
		Members: NewCollectionService(storages.Members, coordinator, ids,
			func(m *models.Member, id models.ID) { m.ID = id }, log),
		Services: NewCollectionService(storages.Services, coordinator, ids,
			func(s *models.Service, id models.ID) { s.ID = id }, log),
		Transactions: NewCollectionService(storages.Transactions, coordinator, ids,
			func(t *models.Transaction, id models.ID) { t.ID = id }, log),
		Users: NewUserService(NewCollectionService(storages.Users, coordinator, ids,
			func(u *models.User, id models.ID) { u.ID = id }, log)),
		Attendance:  NewAttendanceService(reconciler, coordinator, monitor, storages.Attendance, log),
		Reconciler:  reconciler,
		Coordinator: coordinator,
		Backup:      backup,
		BackupJob:   NewBackupJob(backup, cfg.Storage.Backup, log),
	}
}
