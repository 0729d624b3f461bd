package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-konvo/models"
)

// NavigateTo asks [RootModel] to switch pages. A non-nil Payload is
// delivered to the new page as its first message.
type NavigateTo struct {
	Page    string
	Payload tea.Msg
}

type sessionEventMsg struct {
	event models.SessionEvent
}

type conversationEventMsg struct {
	event models.ConversationEvent
}

type codeRequestedMsg struct {
	err    error
	resend bool
}

type codeVerifiedMsg struct {
	err error
}

type profileSavedMsg struct {
	err error
}

type loggedOutMsg struct {
	err error
}

type chatsLoadedMsg struct {
	ids []string
	err error
}

type openChatMsg struct {
	id string
}

type chatOpenedMsg struct {
	id       string
	messages []models.Message
	err      error
}

type messageSentMsg struct {
	err error
}

type chatRefreshedMsg struct {
	err error
}

type copiedMsg struct {
	err error
}

type clearStatusMsg struct{}
