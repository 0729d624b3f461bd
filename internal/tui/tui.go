package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/service"
	"github.com/MKhiriev/go-konvo/models"
)

var ErrUserQuit = errors.New("user quit")

// Conversations hands out live conversations by id.
type Conversations interface {
	Get(id string) service.ConversationService
	Close(id string)
	CloseAll()
	Cached(ctx context.Context) ([]string, error)
}

type TUI struct {
	session       service.SessionService
	conversations Conversations
	buildInfo     models.AppBuildInfo
	logger        *logger.Logger
}

func New(session service.SessionService, conversations Conversations, buildInfo models.AppBuildInfo, log *logger.Logger) (*TUI, error) {
	if session == nil || conversations == nil {
		return nil, errors.New("tui: session and conversations are required")
	}
	return &TUI{
		session:       session,
		conversations: conversations,
		buildInfo:     buildInfo,
		logger:        log.WithComponent("tui"),
	}, nil
}

// Run shows the page matching the current session state and blocks until
// the user quits. Session transitions move between pages on their own.
func (t *TUI) Run(ctx context.Context) error {
	events, cancel := t.session.Subscribe()
	defer cancel()

	root := NewRootModel(ctx, t.session, t.conversations, events, t.buildInfo)
	finalModel, err := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(RootModel)
	if !ok {
		return tea.ErrProgramKilled
	}
	if result.quitByUser {
		t.logger.Debug().Msg("user quit")
		return ErrUserQuit
	}
	return nil
}
