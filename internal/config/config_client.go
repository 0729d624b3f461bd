package config

import (
	"fmt"
	"time"
)

// ClientApp holds client process settings.
type ClientApp struct {
	// LogFile is the client log destination.
	LogFile string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the backend address used by the HTTP gateway.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientStub configures the development backend.
type ClientStub struct {
	// Enabled selects the in-process stub instead of the HTTP gateway.
	Enabled bool
	// Code is the fixed one-time code, empty for random codes.
	Code string
	// TokenSignKey signs stub session tokens.
	TokenSignKey string
	// TokenDuration is the stub token lifetime.
	TokenDuration time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
	// SealSecret enables value encryption when non-empty.
	SealSecret string
	// Ephemeral selects the in-memory store.
	Ephemeral bool
}

// ClientSession contains session manager settings.
type ClientSession struct {
	// ChallengeTTL is the lifetime of a requested one-time code.
	ChallengeTTL time.Duration
}

// ClientSync contains conversation sync settings.
type ClientSync struct {
	// SendAttempts is the retry budget of one send.
	SendAttempts int
	// SendBackoff is the base delay between attempts.
	SendBackoff time.Duration
	// RefreshInterval defines how often an open conversation is re-fetched.
	RefreshInterval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Stub    ClientStub
	Storage ClientStorage
	Session ClientSession
	Sync    ClientSync
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps the fields relevant to the client runtime.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			LogFile: cfg.App.LogFile,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Stub: newClientStub(cfg.Stub),
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
			SealSecret: cfg.Storage.SealSecret,
			Ephemeral:  cfg.Storage.Ephemeral,
		},
		Session: ClientSession{ChallengeTTL: cfg.Sync.ChallengeTTL},
		Sync: ClientSync{
			SendAttempts:    cfg.Sync.SendAttempts,
			SendBackoff:     cfg.Sync.SendBackoff,
			RefreshInterval: cfg.Sync.RefreshInterval,
		},
	}
}

func newClientStub(s Stub) ClientStub {
	return ClientStub{
		Enabled:       s.Enabled,
		Code:          s.Code,
		TokenSignKey:  s.TokenSignKey,
		TokenDuration: s.TokenDuration,
	}
}
