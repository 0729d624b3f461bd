package http

import (
	"github.com/MKhiriev/go-konvo/internal/adapter"
	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/models"
)

// Backend is the messaging backend served over HTTP. It is the client
// gateway contract plus token validation for the auth middleware.
type Backend interface {
	adapter.Gateway
	ParseToken(token string) (models.Token, error)
}

type Handler struct {
	backend   Backend
	buildInfo models.AppBuildInfo

	logger *logger.Logger
}

func NewHandler(backend Backend, buildInfo models.AppBuildInfo, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		backend:   backend,
		buildInfo: buildInfo,
		logger:    logger,
	}
}
