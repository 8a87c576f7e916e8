package config

import (
	"fmt"
	"time"
)

// ClientApp holds the token settings the client uses to authenticate
// against the system of record.
type ClientApp struct {
	TokenSignKey   string
	TokenIssuer    string
	TokenDuration  time.Duration
	InstallationID string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the base address of the system of record.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite database file path.
	DSN string
}

// ClientBackup contains the scheduled backup settings.
type ClientBackup struct {
	Dir      string
	Schedule string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
	// Backup holds scheduled export settings.
	Backup ClientBackup
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often pending operations are synced.
	SyncInterval time.Duration
	// ProbeInterval defines how often connectivity is probed.
	ProbeInterval time.Duration
	// OfflineMarkerDir is the directory watched for the offline marker.
	OfflineMarkerDir string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
	Log     Log
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig(flags *Flags) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(flags)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)

	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps the client fields of cfg without validating them.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			TokenSignKey:   cfg.App.TokenSignKey,
			TokenIssuer:    cfg.App.TokenIssuer,
			TokenDuration:  cfg.App.TokenDuration,
			InstallationID: cfg.App.InstallationID,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
			Backup: ClientBackup{
				Dir:      cfg.Storage.Backup.Dir,
				Schedule: cfg.Storage.Backup.Schedule,
			},
		},
		Workers: ClientWorkers{
			SyncInterval:     cfg.Workers.SyncInterval,
			ProbeInterval:    cfg.Workers.ProbeInterval,
			OfflineMarkerDir: cfg.Workers.OfflineMarkerDir,
		},
		Log: cfg.Log,
	}
}
