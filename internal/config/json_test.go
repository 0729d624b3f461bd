package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Success(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	p := filepath.Join(dir, "config.json")

	jsonBody := `{
		"app": { "log_file": "/tmp/konvo.log" },
		"adapter": {
			"http_address": "https://chat.example.com",
			"request_timeout": "15s"
		},
		"stub": {
			"enabled": true,
			"code": "000000",
			"token_sign_key": "jwt_secret",
			"token_duration": "2h"
		},
		"storage": {
			"db": { "dsn": "/var/lib/konvo/konvo.db" },
			"seal_secret": "seal"
		},
		"sync": {
			"send_attempts": 4,
			"send_backoff": "100ms",
			"refresh_interval": "45s",
			"challenge_ttl": "5m"
		},
		"server": {
			"http_address": "localhost:8081",
			"request_timeout": "20s"
		}
	}`
	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	// Act
	cfg, err := parseJSON(p)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/tmp/konvo.log", cfg.App.LogFile)
	assert.Equal(t, "https://chat.example.com", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 15*time.Second, cfg.Adapter.RequestTimeout)
	assert.True(t, cfg.Stub.Enabled)
	assert.Equal(t, "000000", cfg.Stub.Code)
	assert.Equal(t, "jwt_secret", cfg.Stub.TokenSignKey)
	assert.Equal(t, 2*time.Hour, cfg.Stub.TokenDuration)
	assert.Equal(t, "/var/lib/konvo/konvo.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "seal", cfg.Storage.SealSecret)
	assert.Equal(t, 4, cfg.Sync.SendAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Sync.SendBackoff)
	assert.Equal(t, 45*time.Second, cfg.Sync.RefreshInterval)
	assert.Equal(t, 5*time.Minute, cfg.Sync.ChallengeTTL)
	assert.Equal(t, "localhost:8081", cfg.Server.HTTPAddress)
	assert.Equal(t, 20*time.Second, cfg.Server.RequestTimeout)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseJSON_FileNotFound(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading a json file")
}

func TestParseJSON_InvalidDuration(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"sync":{"send_backoff":"soon"}}`), 0o600))

	_, err := parseJSON(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding json configs")
}

func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, time.Duration(d))

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, time.Duration(d))

	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration(2 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, `"2m0s"`, string(out))
}
