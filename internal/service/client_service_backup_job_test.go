package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-flock-keeper/internal/config"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/models"
)

func TestBackupJob_RunOnce_WritesFile(t *testing.T) {
	storages := newTestStorages(t)
	fillStores(t, storages)
	dir := filepath.Join(t.TempDir(), "backups")

	job := NewBackupJob(newTestBackupService(storages), config.ClientBackup{Dir: dir}, logger.Nop())
	assert.Equal(t, DefaultBackupSchedule, job.schedule)

	path, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup-20250420T100000Z.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snapshot models.BackupSnapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.True(t, snapshot.Has(models.CollectionMembers))

	// no temp files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBackupJob_Disabled(t *testing.T) {
	storages := newTestStorages(t)
	job := NewBackupJob(newTestBackupService(storages), config.ClientBackup{}, logger.Nop())

	_, err := job.RunOnce(context.Background())
	require.ErrorIs(t, err, ErrBackupDisabled)

	// Run returns at once without a directory
	require.NoError(t, job.Run(context.Background()))
}

func TestBackupJob_Run_InvalidSchedule(t *testing.T) {
	storages := newTestStorages(t)
	job := NewBackupJob(newTestBackupService(storages), config.ClientBackup{Dir: t.TempDir(), Schedule: "every tuesday"}, logger.Nop())

	require.Error(t, job.Run(context.Background()))
}

func TestBackupJob_Run_Scheduled(t *testing.T) {
	storages := newTestStorages(t)
	dir := t.TempDir()
	job := NewBackupJob(newTestBackupService(storages), config.ClientBackup{Dir: dir, Schedule: "@every 1s"}, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- job.Run(ctx) }()

	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
