// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG",
	"APP_LOG_FILE",
	"ADAPTER_ADDRESS",
	"ADAPTER_REQUEST_TIMEOUT",
	"STUB_ENABLED",
	"STUB_CODE",
	"STUB_TOKEN_SIGN_KEY",
	"STUB_TOKEN_DURATION",
	"STORAGE_DB_DSN",
	"STORAGE_SEAL_SECRET",
	"STORAGE_EPHEMERAL",
	"SYNC_SEND_ATTEMPTS",
	"SYNC_SEND_BACKOFF",
	"SYNC_REFRESH_INTERVAL",
	"SYNC_CHALLENGE_TTL",
	"SERVER_ADDRESS",
	"SERVER_REQUEST_TIMEOUT",
}

func TestParseEnv_AllFields(t *testing.T) {
	// Arrange
	setEnvVars(t, map[string]string{
		"CONFIG":                  "/path/to/config.json",
		"APP_LOG_FILE":            "/tmp/konvo.log",
		"ADAPTER_ADDRESS":         "localhost:8080",
		"ADAPTER_REQUEST_TIMEOUT": "5s",
		"STUB_ENABLED":            "true",
		"STUB_CODE":               "000000",
		"STUB_TOKEN_SIGN_KEY":     "jwt_secret",
		"STUB_TOKEN_DURATION":     "1h",
		"STORAGE_DB_DSN":          "/var/lib/konvo/konvo.db",
		"STORAGE_SEAL_SECRET":     "seal",
		"STORAGE_EPHEMERAL":       "true",
		"SYNC_SEND_ATTEMPTS":      "5",
		"SYNC_SEND_BACKOFF":       "250ms",
		"SYNC_REFRESH_INTERVAL":   "1m",
		"SYNC_CHALLENGE_TTL":      "10m",
		"SERVER_ADDRESS":          "127.0.0.1:9000",
		"SERVER_REQUEST_TIMEOUT":  "30s",
	})

	// Act
	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
	assert.Equal(t, "/tmp/konvo.log", cfg.App.LogFile)
	assert.Equal(t, "localhost:8080", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 5*time.Second, cfg.Adapter.RequestTimeout)
	assert.True(t, cfg.Stub.Enabled)
	assert.Equal(t, "000000", cfg.Stub.Code)
	assert.Equal(t, "jwt_secret", cfg.Stub.TokenSignKey)
	assert.Equal(t, time.Hour, cfg.Stub.TokenDuration)
	assert.Equal(t, "/var/lib/konvo/konvo.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "seal", cfg.Storage.SealSecret)
	assert.True(t, cfg.Storage.Ephemeral)
	assert.Equal(t, 5, cfg.Sync.SendAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.SendBackoff)
	assert.Equal(t, time.Minute, cfg.Sync.RefreshInterval)
	assert.Equal(t, 10*time.Minute, cfg.Sync.ChallengeTTL)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
}

func TestParseEnv_EmptyEnv(t *testing.T) {
	clearEnvVars(t)

	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	require.NoError(t, err)
	assert.Equal(t, StructuredConfig{}, *cfg)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	setEnvVars(t, map[string]string{
		"SYNC_SEND_BACKOFF": "invalid_duration",
	})

	cfg := &StructuredConfig{}
	err := parseEnv(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "env")
}

func TestParseEnv_InvalidInt(t *testing.T) {
	setEnvVars(t, map[string]string{
		"SYNC_SEND_ATTEMPTS": "three",
	})

	err := parseEnv(&StructuredConfig{})
	require.Error(t, err)
}

func TestParseEnv_DurationFormats(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{"hours", "2h", 2 * time.Hour},
		{"minutes", "45m", 45 * time.Minute},
		{"seconds", "30s", 30 * time.Second},
		{"combined", "1h30m", 90 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvVars(t, map[string]string{
				"SYNC_CHALLENGE_TTL": tt.envValue,
			})

			cfg := &StructuredConfig{}
			require.NoError(t, parseEnv(cfg))
			assert.Equal(t, tt.expected, cfg.Sync.ChallengeTTL)
		})
	}
}

// Helpers

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	clearEnvVars(t)
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

// clearEnvVars unsets every known variable; t.Setenv restores the
// original values when the test ends.
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}
