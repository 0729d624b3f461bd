package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values applied to fields no other source has set.
const (
	DefaultRequestTimeout  = 10 * time.Second
	DefaultSendAttempts    = 3
	DefaultSendBackoff     = 500 * time.Millisecond
	DefaultRefreshInterval = 30 * time.Second
	DefaultChallengeTTL    = 10 * time.Minute
	DefaultTokenDuration   = 24 * time.Hour
	DefaultServerAddress   = "localhost:8080"
	DefaultServerTimeout   = 30 * time.Second

	dbFileName = "konvo.db"
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Adapter: Adapter{
			RequestTimeout: DefaultRequestTimeout,
		},
		Stub: Stub{
			TokenDuration: DefaultTokenDuration,
		},
		Storage: Storage{
			DB: DB{DSN: defaultDSN()},
		},
		Sync: Sync{
			SendAttempts:    DefaultSendAttempts,
			SendBackoff:     DefaultSendBackoff,
			RefreshInterval: DefaultRefreshInterval,
			ChallengeTTL:    DefaultChallengeTTL,
		},
		Server: Server{
			HTTPAddress:    DefaultServerAddress,
			RequestTimeout: DefaultServerTimeout,
		},
	}
}

// defaultDSN places the database in the user config directory, falling back
// to the working directory.
func defaultDSN() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return dbFileName
	}
	return filepath.Join(dir, "konvo", dbFileName)
}
