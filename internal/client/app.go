package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/service"
	"github.com/MKhiriev/go-konvo/internal/tui"
)

type App struct {
	services *service.ClientServices
	ui       UI
	logger   *logger.Logger
}

func NewApp(services *service.ClientServices, ui UI, log *logger.Logger) (*App, error) {
	if services == nil || services.Session == nil || services.Conversations == nil {
		return nil, errors.New("client services are required")
	}
	if ui == nil {
		return nil, errors.New("ui is required")
	}

	return &App{services: services, ui: ui, logger: log.WithComponent("client")}, nil
}

// Run restores the stored session and runs the UI. A session that cannot be
// restored is not fatal: the user starts signed out.
func (a *App) Run(ctx context.Context) error {
	session, err := a.services.Session.Restore(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("stored session was not restored")
	} else {
		a.logger.Info().Str("state", session.State.String()).Msg("session restored")
	}

	defer a.services.Conversations.CloseAll()

	if err = a.ui.Run(ctx); err != nil {
		if errors.Is(err, tui.ErrUserQuit) {
			return nil
		}
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
