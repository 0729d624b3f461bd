package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntries(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger_EntryShape(t *testing.T) {
	for _, role := range []string{"konvo-devserver", "konvo-client"} {
		t.Run(role, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(role)
			l.Logger = l.Output(&buf)

			l.Debug().Str("conversation_id", "c1").Msg("conversation refreshed")

			entries := decodeEntries(t, buf.Bytes())
			require.Len(t, entries, 1)
			entry := entries[0]
			assert.Equal(t, role, entry["role"])
			assert.Equal(t, "debug", entry["level"])
			assert.Equal(t, "c1", entry["conversation_id"])
			assert.Contains(t, entry, "time")
			assert.Contains(t, entry["func"], "TestNewLogger_EntryShape")
			assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
		})
	}
}

func TestNewClientLogger(t *testing.T) {
	t.Run("entries go to the log file, not the terminal", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "client.log")

		NewClientLogger("konvo-client", path).Info().Msg("session restored")
		NewClientLogger("konvo-client", path).Warn().Msg("restore failed")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		entries := decodeEntries(t, data)
		require.Len(t, entries, 2, "a second run appends")
		assert.Equal(t, "session restored", entries[0]["message"])
		assert.Equal(t, "warn", entries[1]["level"])
		assert.Equal(t, "konvo-client", entries[1]["role"])
	})

	t.Run("unopenable path still yields a logger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing-dir", "client.log")

		l := NewClientLogger("konvo-client", path)

		require.NotNil(t, l)
		assert.NotPanics(t, func() { l.Debug().Msg("to stderr") })
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestNop_DiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Nop()
	l.Logger = l.Output(&buf)

	l.Error().Msg("dropped")

	assert.Empty(t, buf.String())
}

func TestDerivedLoggers(t *testing.T) {
	tests := []struct {
		name          string
		derive        func(*Logger) *Logger
		wantComponent any
	}{
		{name: "child", derive: (*Logger).GetChildLogger, wantComponent: nil},
		{name: "session component", derive: func(l *Logger) *Logger { return l.WithComponent("session") }, wantComponent: "session"},
		{name: "conversation component", derive: func(l *Logger) *Logger { return l.WithComponent("conversation") }, wantComponent: "conversation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			parent := &Logger{zerolog.New(&buf).With().Str("role", "konvo-client").Logger()}

			derived := tt.derive(parent)
			require.NotSame(t, parent, derived)
			derived.Info().Msg("derived")

			entries := decodeEntries(t, buf.Bytes())
			require.Len(t, entries, 1)
			assert.Equal(t, "konvo-client", entries[0]["role"])
			assert.Equal(t, tt.wantComponent, entries[0]["component"])
		})
	}
}

func TestContextLoggers(t *testing.T) {
	tests := []struct {
		name    string
		resolve func(context.Context) *Logger
	}{
		{name: "from context", resolve: FromContext},
		{name: "from request", resolve: func(ctx context.Context) *Logger {
			req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
			return FromRequest(req.WithContext(ctx))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := &Logger{zerolog.New(&buf).With().Str("trace_id", "t-1").Logger()}

			tt.resolve(l.WithContext(context.Background())).Info().Msg("handled")

			entries := decodeEntries(t, buf.Bytes())
			require.Len(t, entries, 1)
			assert.Equal(t, "t-1", entries[0]["trace_id"])
		})

		t.Run(tt.name+" without logger", func(t *testing.T) {
			l := tt.resolve(context.Background())
			require.NotNil(t, l)
			assert.NotPanics(t, func() { l.Info().Msg("nowhere") })
		})
	}
}
