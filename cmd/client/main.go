// Command client is the terminal messaging client.
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-konvo/internal/adapter"
	"github.com/MKhiriev/go-konvo/internal/client"
	"github.com/MKhiriev/go-konvo/internal/config"
	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/service"
	"github.com/MKhiriev/go-konvo/internal/store"
	"github.com/MKhiriev/go-konvo/internal/tui"
	"github.com/MKhiriev/go-konvo/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewLogger("konvo-client").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewClientLogger("konvo-client", cfg.App.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	gateway, err := newGateway(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create gateway")
	}

	localStorage, err := store.NewClientStorage(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}
	defer localStorage.Close()

	services := service.NewClientServices(localStorage, gateway, cfg, log)
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	ui, err := tui.New(services.Session, services.Conversations, buildInfo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating ui")
	}

	app, err := client.NewApp(services, ui, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("client run error")
	}
}

// newGateway picks the in-process stub or the HTTP backend.
func newGateway(cfg *config.ClientConfig, log *logger.Logger) (adapter.Gateway, error) {
	if cfg.Stub.Enabled {
		log.Info().Msg("using the in-process stub backend")
		return adapter.NewStubGateway(cfg.Stub, log), nil
	}
	return adapter.NewHTTPGateway(cfg.Adapter, log)
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
