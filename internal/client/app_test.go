package client

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-konvo/internal/adapter"
	"github.com/MKhiriev/go-konvo/internal/config"
	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/service"
	"github.com/MKhiriev/go-konvo/internal/store"
	"github.com/MKhiriev/go-konvo/internal/tui"
	"github.com/MKhiriev/go-konvo/models"
)

type fakeUI struct {
	err   error
	calls int
	seen  models.SessionState
	read  func() models.SessionState
}

func (f *fakeUI) Run(context.Context) error {
	f.calls++
	if f.read != nil {
		f.seen = f.read()
	}
	return f.err
}

func newServices(t *testing.T, kv store.KeyValueStore) *service.ClientServices {
	t.Helper()
	gw := adapter.NewStubGateway(config.ClientStub{Enabled: true, Code: "000000", TokenSignKey: "k"}, logger.Nop())
	return service.NewClientServices(kv, gw, &config.ClientConfig{}, logger.Nop())
}

func TestNewApp_Validation(t *testing.T) {
	_, err := NewApp(nil, &fakeUI{}, logger.Nop())
	assert.Error(t, err)

	_, err = NewApp(newServices(t, store.NewMemoryStore()), nil, logger.Nop())
	assert.Error(t, err)
}

func TestApp_RunRestoresSessionBeforeUI(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	stored, err := json.Marshal(models.Session{
		IdentityID:      "id-1",
		PhoneHandle:     "+233555111222",
		Token:           "token",
		ProfileComplete: true,
		State:           models.SessionAuthenticated,
		Identity:        &models.Identity{ID: "id-1", FirstName: "Ada", Username: "ada"},
	})
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, store.SessionKey, stored))

	services := newServices(t, kv)
	ui := &fakeUI{read: func() models.SessionState { return services.Session.State() }}
	app, err := NewApp(services, ui, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, app.Run(ctx))
	assert.Equal(t, 1, ui.calls)
	assert.Equal(t, models.SessionAuthenticated, ui.seen)
}

func TestApp_RunErrors(t *testing.T) {
	tests := []struct {
		name    string
		uiErr   error
		wantErr bool
	}{
		{name: "user quit is a clean exit", uiErr: tui.ErrUserQuit},
		{name: "normal exit", uiErr: nil},
		{name: "ui failure", uiErr: errors.New("no tty"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewApp(newServices(t, store.NewMemoryStore()), &fakeUI{err: tt.uiErr}, logger.Nop())
			require.NoError(t, err)

			err = app.Run(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, tt.uiErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
