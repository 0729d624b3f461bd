// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// konvo client and the development server. It is populated by merging
// values from a .env file, environment variables, command-line flags, an
// optional JSON file and finally the built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds process-level settings.
	App App `envPrefix:"APP_"`

	// Adapter holds the remote gateway settings used by the client.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Stub holds the settings of the in-process development backend.
	Stub Stub `envPrefix:"STUB_"`

	// Storage holds the local key-value store settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds session and conversation synchronisation budgets.
	Sync Sync `envPrefix:"SYNC_"`

	// Server holds the development server listen settings.
	Server Server `envPrefix:"SERVER_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds process-level settings.
type App struct {
	// LogFile is where the client writes its logs. The terminal belongs to
	// the UI, so client logs never go to stdout. Empty means a "logs" file
	// next to the executable.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`
}

// Adapter holds the settings of the HTTP gateway to the messaging backend.
type Adapter struct {
	// HTTPAddress is the backend address, "host:port" or a full base URL.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every outbound request (e.g. "10s").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Stub configures the development backend that stands in for the real
// messaging service, both in-process (client) and behind the dev server.
type Stub struct {
	// Enabled switches the client to the in-process stub gateway.
	// Env: STUB_ENABLED
	Enabled bool `env:"ENABLED"`

	// Code is the one-time code accepted by the stub. Empty means a random
	// code is generated per challenge and written to the log.
	// Env: STUB_CODE
	Code string `env:"CODE"`

	// TokenSignKey is the HS256 key of the session tokens issued by the stub.
	// Env: STUB_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenDuration is the lifetime of issued tokens.
	// Env: STUB_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`
}

// Storage groups the local key-value store settings.
type Storage struct {
	// DB holds the SQLite file settings.
	DB DB `envPrefix:"DB_"`

	// SealSecret enables at-rest encryption of stored values when set.
	// Env: STORAGE_SEAL_SECRET
	SealSecret string `env:"SEAL_SECRET"`

	// Ephemeral keeps everything in memory; nothing survives the process.
	// Env: STORAGE_EPHEMERAL
	Ephemeral bool `env:"EPHEMERAL"`
}

// DB holds the SQLite connection settings.
type DB struct {
	// DSN is the SQLite database file path.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Sync holds the budgets of the session manager and the conversation sync
// engine.
type Sync struct {
	// SendAttempts is the total number of gateway calls made for one send.
	// Env: SYNC_SEND_ATTEMPTS
	SendAttempts int `env:"SEND_ATTEMPTS"`

	// SendBackoff is the base delay between send attempts.
	// Env: SYNC_SEND_BACKOFF
	SendBackoff time.Duration `env:"SEND_BACKOFF"`

	// RefreshInterval is how often an open conversation is re-fetched.
	// Env: SYNC_REFRESH_INTERVAL
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL"`

	// ChallengeTTL is how long a requested one-time code stays usable.
	// Env: SYNC_CHALLENGE_TTL
	ChallengeTTL time.Duration `env:"CHALLENGE_TTL"`
}

// Server holds the development server settings.
type Server struct {
	// HTTPAddress is the listen address in "host:port" format.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the per-request handler timeout.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// GetStructuredConfig loads and merges the configuration from all available
// sources. Earlier sources win for non-zero fields:
//  1. Environment variables (including those loaded from a .env file)
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withDotEnv().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
