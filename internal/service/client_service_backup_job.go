package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/MKhiriev/go-flock-keeper/internal/config"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
)

// DefaultBackupSchedule is used when no schedule is configured.
const DefaultBackupSchedule = "@daily"

// backupFileLayout names backup files; it sorts chronologically and has no
// characters that are invalid in file names.
const backupFileLayout = "20060102T150405Z"

// BackupJob writes a backup document into a directory on a cron schedule.
type BackupJob struct {
	backup   *BackupService
	dir      string
	schedule string

	logger *logger.Logger
}

// NewBackupJob creates the job. A job with an empty directory is disabled.
func NewBackupJob(backup *BackupService, cfg config.ClientBackup, log *logger.Logger) *BackupJob {
	schedule := strings.TrimSpace(cfg.Schedule)
	if schedule == "" {
		schedule = DefaultBackupSchedule
	}
	return &BackupJob{
		backup:   backup,
		dir:      cfg.Dir,
		schedule: schedule,
		logger:   log,
	}
}

// Run schedules the job and blocks until ctx is done. A disabled job
// returns immediately.
func (j *BackupJob) Run(ctx context.Context) error {
	if j.dir == "" {
		j.logger.Info().Str("func", "BackupJob.Run").Msg("backup directory not configured, scheduled backups disabled")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(j.schedule, func() {
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Err(err).Str("func", "BackupJob.Run").Msg("scheduled backup failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", j.schedule, err)
	}

	j.logger.Info().Str("func", "BackupJob.Run").Str("schedule", j.schedule).Str("dir", j.dir).Msg("scheduled backups started")
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()

	return nil
}

// RunOnce writes one backup file and returns its path.
func (j *BackupJob) RunOnce(ctx context.Context) (string, error) {
	if j.dir == "" {
		return "", ErrBackupDisabled
	}
	if err := os.MkdirAll(j.dir, 0o700); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	tmp, err := os.CreateTemp(j.dir, ".backup-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp backup file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err = j.backup.WriteTo(ctx, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp backup file: %w", err)
	}

	path := filepath.Join(j.dir, "backup-"+j.backup.now().UTC().Format(backupFileLayout)+".json")
	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename backup file: %w", err)
	}

	j.logger.Info().Str("func", "BackupJob.RunOnce").Str("path", path).Msg("backup written")

	return path, nil
}
