package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// NetAddress holds structured network address data for host and port.
// It implements the pflag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// Flags holds the values of every configuration flag registered on a
// pflag.FlagSet. Values are read after the flag set has been parsed, so the
// same Flags value works with a cobra command tree and with a bare FlagSet.
//
// Flags:
//
//	-a, --address          server listen address in format [host]:[port]
//	-s, --server           system of record address used by the client
//	-d, --database         database DSN (SQLite path on the client, PostgreSQL on the server)
//	-c, --config           json file path with configs
//	--backup-dir           directory for scheduled backups
//	--backup-schedule      cron spec of scheduled backups
//	--token-sign-key       token signing key
//	--token-issuer         token issuer name
//	--token-duration       token duration (e.g., "1h", "30m")
//	--request-timeout      request timeout (e.g., "30s", "1m")
//	--sync-interval        pending operation sync interval
//	--probe-interval       connectivity probe interval
//	--offline-marker-dir   directory watched for the "offline" marker file
//	--log-level            log level
//	--log-file             client log file path
type Flags struct {
	serverAddress    NetAddress
	adapterAddress   string
	databaseDSN      string
	jsonConfigPath   string
	backupDir        string
	backupSchedule   string
	tokenSignKey     string
	tokenIssuer      string
	tokenDuration    time.Duration
	requestTimeout   time.Duration
	syncInterval     time.Duration
	probeInterval    time.Duration
	offlineMarkerDir string
	logLevel         string
	logFile          string
}

// NewFlags registers all configuration flags on fs.
func NewFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}

	fs.VarP(&f.serverAddress, "address", "a", "Net address host:port")
	fs.StringVarP(&f.adapterAddress, "server", "s", "", "System of record address")
	fs.StringVarP(&f.databaseDSN, "database", "d", "", "Database DSN")
	fs.StringVarP(&f.jsonConfigPath, "config", "c", "", "JSON config file path")
	fs.StringVar(&f.backupDir, "backup-dir", "", "Scheduled backup directory")
	fs.StringVar(&f.backupSchedule, "backup-schedule", "", "Scheduled backup cron spec (e.g., @daily)")
	fs.StringVar(&f.tokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&f.tokenIssuer, "token-issuer", "", "Token issuer")
	fs.DurationVar(&f.tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	fs.DurationVar(&f.requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.DurationVar(&f.syncInterval, "sync-interval", 0, "Sync interval (e.g., 5m)")
	fs.DurationVar(&f.probeInterval, "probe-interval", 0, "Connectivity probe interval (e.g., 30s)")
	fs.StringVar(&f.offlineMarkerDir, "offline-marker-dir", "", "Directory watched for the offline marker file")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level")
	fs.StringVar(&f.logFile, "log-file", "", "Log file path")

	return f
}

// ParseFlags registers the configuration flags on a fresh flag set and
// parses args. Used by binaries without a command tree.
func ParseFlags(name string, args []string) (*Flags, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f := NewFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// Config converts the parsed flag values into a [StructuredConfig].
// The request timeout flag applies to both the server and the adapter.
func (f *Flags) Config() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenSignKey:  f.tokenSignKey,
			TokenIssuer:   f.tokenIssuer,
			TokenDuration: f.tokenDuration,
		},
		Storage: Storage{
			DB: DB{
				DSN: f.databaseDSN,
			},
			Backup: Backup{
				Dir:      f.backupDir,
				Schedule: f.backupSchedule,
			},
		},
		Server: Server{
			HTTPAddress:    f.serverAddress.String(),
			RequestTimeout: f.requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    f.adapterAddress,
			RequestTimeout: f.requestTimeout,
		},
		Workers: Workers{
			SyncInterval:     f.syncInterval,
			ProbeInterval:    f.probeInterval,
			OfflineMarkerDir: f.offlineMarkerDir,
		},
		Log: Log{
			Level: f.logLevel,
			File:  f.logFile,
		},
		JSONFilePath: f.jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost"
// or empty, and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}

// Type implements pflag.Value.
func (a *NetAddress) Type() string {
	return "host:port"
}
