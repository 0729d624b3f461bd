// Command devserver serves the in-memory stub backend over the HTTP API the
// client gateway speaks, for local development against a real network hop.
package main

import (
	"fmt"

	"github.com/MKhiriev/go-konvo/internal/adapter"
	"github.com/MKhiriev/go-konvo/internal/config"
	"github.com/MKhiriev/go-konvo/internal/handler"
	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/server"
	"github.com/MKhiriev/go-konvo/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("konvo-devserver")
	cfg, err := config.GetDevServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Str("address", cfg.HTTPAddress).Dur("request_timeout", cfg.RequestTimeout).Msg("received configs")

	backend := adapter.NewStubGateway(cfg.Stub, log)
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	handlers, err := handler.NewHandlers(backend, buildInfo, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
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
