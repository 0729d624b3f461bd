package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-konvo/internal/service"
)

// ChatsModel lists the conversations cached on this device and opens them.
type ChatsModel struct {
	ctx           context.Context
	session       service.SessionService
	conversations Conversations

	ids     []string
	idx     int
	loading bool
	errMsg  string

	newChat  bool
	idInput  textinput.Model
	loggedIn string
}

func NewChatsModel(ctx context.Context, session service.SessionService, conversations Conversations) *ChatsModel {
	idInput := textinput.New()
	idInput.Placeholder = "conversation id"
	idInput.CharLimit = 64
	idInput.Width = 40

	return &ChatsModel{
		ctx:           ctx,
		session:       session,
		conversations: conversations,
		idInput:       idInput,
	}
}

func (m *ChatsModel) Init() tea.Cmd {
	m.loading = true
	m.errMsg = ""
	m.newChat = false
	m.idInput.Blur()

	m.loggedIn = ""
	if identity := m.session.Session().Identity; identity != nil {
		m.loggedIn = identity.DisplayName()
	}
	return m.cmdLoad()
}

// typing reports whether keystrokes belong to the id input.
func (m *ChatsModel) typing() bool {
	return m.newChat
}

func (m *ChatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chatsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.ids = msg.ids
		if m.idx >= len(m.ids) {
			m.idx = len(m.ids) - 1
		}
		if m.idx < 0 {
			m.idx = 0
		}
		return m, nil
	case loggedOutMsg:
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
		}
		return m, nil
	case tea.KeyMsg:
		if m.newChat {
			return m.updateNewChat(msg)
		}
		switch {
		case key.Matches(msg, keys.up):
			if m.idx > 0 {
				m.idx--
			}
		case key.Matches(msg, keys.down):
			if m.idx < len(m.ids)-1 {
				m.idx++
			}
		case key.Matches(msg, keys.enter):
			if len(m.ids) == 0 {
				return m, nil
			}
			return m, openChat(m.ids[m.idx])
		case key.Matches(msg, keys.newChat):
			m.newChat = true
			m.idInput.SetValue("")
			m.idInput.Focus()
			return m, textinput.Blink
		case key.Matches(msg, keys.reload):
			m.loading = true
			return m, m.cmdLoad()
		case key.Matches(msg, keys.logout):
			return m, cmdCloseAndLogout(m.ctx, m.conversations, m.session)
		}
	}
	return m, nil
}

func (m *ChatsModel) updateNewChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.newChat = false
		m.idInput.Blur()
		return m, nil
	case key.Matches(msg, keys.enter):
		id := strings.TrimSpace(m.idInput.Value())
		if id == "" {
			return m, nil
		}
		m.newChat = false
		m.idInput.Blur()
		return m, openChat(id)
	}

	var cmd tea.Cmd
	m.idInput, cmd = m.idInput.Update(msg)
	return m, cmd
}

func (m *ChatsModel) View() string {
	var b strings.Builder
	b.WriteString("Signed in as ")
	b.WriteString(valueOrDash(m.loggedIn))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString("Loading...\n")
	case len(m.ids) == 0:
		b.WriteString("No conversations yet\n")
	default:
		for i, id := range m.ids {
			cursor := " "
			if i == m.idx {
				cursor = ">"
			}
			b.WriteString(fmt.Sprintf("%s %d │ %s\n", cursor, i+1, fitText(id, 48)))
		}
	}

	if m.newChat {
		b.WriteString("\nOpen │ [")
		b.WriteString(m.idInput.View())
		b.WriteString("]\n")
	}
	writeError(&b, m.errMsg)

	hotKeys := "enter: open │ n: new │ r: reload │ l: sign out │ v: version"
	if m.newChat {
		hotKeys = "enter: open │ esc: cancel"
	}
	return renderPage("CONVERSATIONS", strings.TrimRight(b.String(), "\n"), hotKeys)
}

func (m *ChatsModel) cmdLoad() tea.Cmd {
	ctx, conversations := m.ctx, m.conversations
	return func() tea.Msg {
		ids, err := conversations.Cached(ctx)
		return chatsLoadedMsg{ids: ids, err: err}
	}
}

// cmdCloseAndLogout releases every conversation before the session ends, so
// no send of this identity is still writing when its caches are cleared.
func cmdCloseAndLogout(ctx context.Context, conversations Conversations, session service.SessionService) tea.Cmd {
	return func() tea.Msg {
		conversations.CloseAll()
		return loggedOutMsg{err: session.Logout(ctx)}
	}
}

func openChat(id string) tea.Cmd {
	return func() tea.Msg {
		return NavigateTo{Page: pageChat, Payload: openChatMsg{id: id}}
	}
}
