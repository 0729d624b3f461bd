package service

import (
	"github.com/MKhiriev/go-konvo/internal/adapter"
	"github.com/MKhiriev/go-konvo/internal/config"
	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/store"
)

type ClientServices struct {
	Session       *SessionManager
	Conversations *ConversationRegistry
}

func NewClientServices(kv store.KeyValueStore, gateway adapter.Gateway, cfg *config.ClientConfig, log *logger.Logger) *ClientServices {
	session := NewSessionManager(kv, gateway, cfg.Session, log)

	return &ClientServices{
		Session:       session,
		Conversations: NewConversationRegistry(kv, gateway, session, cfg.Sync, log),
	}
}
