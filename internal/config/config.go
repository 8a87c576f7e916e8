// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// flock-keeper client and the system-of-record server. It is populated by
// merging built-in defaults, an optional JSON file, environment variables
// and command-line flags.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env      : direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds token parameters shared by both sides of the sync protocol.
	App App `envPrefix:"APP_"`

	// Storage holds the local or remote database settings and the backup
	// destination.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the listen address and timeouts of the system of record.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the client's view of the system of record.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds the intervals of the client background workers.
	Workers Workers `envPrefix:"WORKERS_"`

	// Log holds logger level and output settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / --config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the persistence settings.
type Storage struct {
	// DB holds the database connection settings.
	DB DB `envPrefix:"DB_"`

	// Backup holds the scheduled backup settings of the client.
	Backup Backup `envPrefix:"BACKUP_"`
}

// App holds token configuration.
type App struct {
	// TokenSignKey is the HMAC key used to sign and verify JWT tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim of every issued token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is the lifetime of a client-minted token.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// InstallationID is the "sub" claim the client puts into its tokens.
	// Env: APP_INSTALLATION_ID
	InstallationID string `env:"INSTALLATION_ID"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the "host:port" the HTTP server listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// DB holds the database connection string. The client uses a SQLite file
// path, the server a PostgreSQL DSN.
type DB struct {
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Backup holds the scheduled export settings.
type Backup struct {
	// Dir is the directory backup documents are written to. Empty disables
	// the scheduled backup job.
	// Env: STORAGE_BACKUP_DIR
	Dir string `env:"DIR"`

	// Schedule is a cron spec or descriptor such as "@daily".
	// Env: STORAGE_BACKUP_SCHEDULE
	Schedule string `env:"SCHEDULE"`
}

// Adapter holds the client-side settings of the remote store adapter.
type Adapter struct {
	// HTTPAddress is the base address of the system of record, with or
	// without scheme (e.g. "localhost:8080", "https://records.example.org").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds the client background worker settings.
type Workers struct {
	// SyncInterval is the fixed cadence of pending-operation sync passes.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ProbeInterval is the cadence of connectivity health probes.
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// OfflineMarkerDir is watched for an "offline" marker file that forces
	// offline mode while it exists. Empty disables the watcher.
	// Env: WORKERS_OFFLINE_MARKER_DIR
	OfflineMarkerDir string `env:"OFFLINE_MARKER_DIR"`
}

// Log holds logger settings.
type Log struct {
	// Level is a zerolog level name ("debug", "info", ...).
	// Env: LOG_LEVEL
	Level string `env:"LEVEL"`

	// File is the client log file path; rotated by size. Empty means the
	// "logs" file next to the executable.
	// Env: LOG_FILE
	File string `env:"FILE"`
}

// Defaults applied before any other source.
const (
	DefaultSyncInterval   = 5 * time.Minute
	DefaultProbeInterval  = 30 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultTokenDuration  = time.Hour
	DefaultTokenIssuer    = "go-flock-keeper"
	DefaultInstallationID = "flock-keeper-client"
	DefaultBackupSchedule = "@daily"
	DefaultLogLevel       = "info"
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:    DefaultTokenIssuer,
			TokenDuration:  DefaultTokenDuration,
			InstallationID: DefaultInstallationID,
		},
		Storage: Storage{
			Backup: Backup{Schedule: DefaultBackupSchedule},
		},
		Server:  Server{RequestTimeout: DefaultRequestTimeout},
		Adapter: Adapter{RequestTimeout: DefaultRequestTimeout},
		Workers: Workers{
			SyncInterval:  DefaultSyncInterval,
			ProbeInterval: DefaultProbeInterval,
		},
		Log: Log{Level: DefaultLogLevel},
	}
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources. Precedence, lowest first:
//  1. Built-in defaults
//  2. JSON file (path resolved from env and flags)
//  3. Environment variables
//  4. Command-line flags
func GetStructuredConfig(flags *Flags) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(flags).
		withJSON().
		build()
}
