package config

import (
	"fmt"
	"time"
)

// DevServerConfig is the configuration of cmd/devserver, the HTTP face of
// the stub backend.
type DevServerConfig struct {
	// HTTPAddress is the listen address.
	HTTPAddress string
	// RequestTimeout is the per-request handler timeout.
	RequestTimeout time.Duration
	// Stub configures codes and token signing.
	Stub ClientStub
}

// GetDevServerConfig builds and validates the development server config.
func GetDevServerConfig() (*DevServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	devCfg := &DevServerConfig{
		HTTPAddress:    cfg.Server.HTTPAddress,
		RequestTimeout: cfg.Server.RequestTimeout,
		Stub:           newClientStub(cfg.Stub),
	}
	// the server is always a stub
	devCfg.Stub.Enabled = true

	return devCfg, devCfg.validate()
}
