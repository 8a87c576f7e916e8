package config

import (
	"fmt"
	"time"
)

// ServerApp holds the token settings used to verify client requests.
type ServerApp struct {
	TokenSignKey string
	TokenIssuer  string
}

// ServerConfig is the system-of-record configuration assembled from
// [StructuredConfig].
type ServerConfig struct {
	App            ServerApp
	HTTPAddress    string
	RequestTimeout time.Duration
	DB             DB
	Log            Log
}

// GetServerConfig builds and validates the server view of the merged
// structured configuration.
func GetServerConfig(flags *Flags) (*ServerConfig, error) {
	cfg, err := GetStructuredConfig(flags)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := NewServerConfig(cfg)

	return serverCfg, serverCfg.validate()
}

// NewServerConfig maps the server fields of cfg without validating them.
func NewServerConfig(cfg *StructuredConfig) *ServerConfig {
	return &ServerConfig{
		App: ServerApp{
			TokenSignKey: cfg.App.TokenSignKey,
			TokenIssuer:  cfg.App.TokenIssuer,
		},
		HTTPAddress:    cfg.Server.HTTPAddress,
		RequestTimeout: cfg.Server.RequestTimeout,
		DB:             cfg.Storage.DB,
		Log:            cfg.Log,
	}
}
