// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-konvo/internal/service"
	"github.com/MKhiriev/go-konvo/models"
)

const (
	visibleMessages = 15
	statusTimeout   = 2 * time.Second
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

// ChatModel shows one conversation. Messages come from the conversation's
// event stream; the page never edits the list itself.
type ChatModel struct {
	ctx           context.Context
	session       service.SessionService
	conversations Conversations

	id     string
	conv   service.ConversationService
	events <-chan models.ConversationEvent
	cancel func()

	messages []models.Message
	idx      int
	follow   bool

	input   textinput.Model
	spinner spinner.Model
	loading bool
	status  string
	errMsg  string
}

func NewChatModel(ctx context.Context, session service.SessionService, conversations Conversations) *ChatModel {
	input := textinput.New()
	input.Placeholder = "message"
	input.CharLimit = 4096
	input.Width = 60

	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return &ChatModel{
		ctx:           ctx,
		session:       session,
		conversations: conversations,
		input:         input,
		spinner:       s,
	}
}

// Init waits for the openChatMsg delivered with the navigation.
func (m *ChatModel) Init() tea.Cmd {
	return nil
}

// leave drops the subscription and closes the conversation. Sends still in
// flight finish in the background and keep their outcome.
func (m *ChatModel) leave() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.conv != nil {
		m.conversations.Close(m.id)
		m.conv = nil
	}
	m.events = nil
}

func (m *ChatModel) open(id string) tea.Cmd {
	m.leave()

	m.id = id
	m.conv = m.conversations.Get(id)
	m.events, m.cancel = m.conv.Subscribe()
	m.messages = nil
	m.idx = 0
	m.follow = true
	m.loading = true
	m.status = ""
	m.errMsg = ""
	m.input.SetValue("")
	m.input.Focus()

	return tea.Batch(m.cmdOpen(), waitConversationEvent(m.events), m.spinner.Tick, textinput.Blink)
}

func waitConversationEvent(events <-chan models.ConversationEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return conversationEventMsg{event: ev}
	}
}

func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case openChatMsg:
		return m, m.open(msg.id)
	case chatOpenedMsg:
		if msg.id != m.id {
			return m, nil
		}
		if msg.err != nil {
			m.loading = false
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		if m.messages == nil {
			m.setMessages(msg.messages)
		}
		return m, nil
	case conversationEventMsg:
		if msg.event.ConversationID != m.id || m.conv == nil {
			return m, nil
		}
		m.loading = false
		m.setMessages(msg.event.Messages)
		if msg.event.Err != nil {
			m.errMsg = humanizeError(msg.event.Err)
		}
		return m, waitConversationEvent(m.events)
	case messageSentMsg, chatRefreshedMsg:
		var err error
		switch result := msg.(type) {
		case messageSentMsg:
			err = result.err
		case chatRefreshedMsg:
			err = result.err
		}
		if err != nil {
			m.errMsg = humanizeError(err)
		}
		return m, nil
	case copiedMsg:
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.status = "Copied!"
		return m, cmdClearStatus()
	case clearStatusMsg:
		m.status = ""
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.conv == nil {
			if key.Matches(msg, keys.esc) {
				return m, backToChats()
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.esc):
			return m, backToChats()
		case key.Matches(msg, chatKeys.up):
			if m.idx > 0 {
				m.idx--
			}
			m.follow = false
			return m, nil
		case key.Matches(msg, chatKeys.down):
			if m.idx < len(m.messages)-1 {
				m.idx++
			}
			m.follow = m.idx == len(m.messages)-1
			return m, nil
		case key.Matches(msg, keys.enter):
			content := m.input.Value()
			if strings.TrimSpace(content) == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.errMsg = ""
			m.follow = true
			return m, m.cmdSend(content)
		case key.Matches(msg, keys.retry):
			selected, ok := m.selected()
			if !ok || selected.DeliveryState != models.DeliveryFailed {
				m.errMsg = humanizeError(service.ErrNotRetryable)
				return m, nil
			}
			m.errMsg = ""
			return m, m.cmdRetry(selected.LocalID)
		case key.Matches(msg, keys.refresh):
			m.errMsg = ""
			return m, m.cmdRefresh()
		case key.Matches(msg, keys.copy):
			selected, ok := m.selected()
			if !ok {
				return m, nil
			}
			return m, cmdCopy(selected.Content)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *ChatModel) View() string {
	var b strings.Builder

	header := "Conversation " + fitText(m.id, 40)
	if m.loading {
		header += "  " + m.spinner.View()
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	if len(m.messages) == 0 {
		if m.loading {
			b.WriteString("Loading...\n")
		} else {
			b.WriteString("No messages yet\n")
		}
	}

	start, end := m.window()
	identityID := m.session.Session().IdentityID
	for i := start; i < end; i++ {
		line := m.renderMessage(m.messages[i], identityID)
		if i == m.idx && !m.follow {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n> ")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	writeStatus(&b, m.status)
	writeError(&b, m.errMsg)

	return renderPage("CHAT", strings.TrimRight(b.String(), "\n"),
		"enter: send │ ↑/↓: select │ ctrl+r: retry │ ctrl+y: copy │ ctrl+f: refresh │ esc: back")
}

func (m *ChatModel) renderMessage(msg models.Message, identityID string) string {
	sender := "them"
	if msg.IsLocal() || (identityID != "" && msg.SenderID == identityID) {
		sender = "you"
	}

	line := fmt.Sprintf("%s %-4s %s %s", formatClock(msg.EffectiveTimestamp), sender, deliveryMark(msg.DeliveryState), msg.Content)
	switch msg.DeliveryState {
	case models.DeliveryPending:
		return pendingStyle.Render(line)
	case models.DeliveryFailed:
		return errorStyle.Render(line)
	}
	return line
}

func deliveryMark(state models.DeliveryState) string {
	switch state {
	case models.DeliveryPending:
		return "…"
	case models.DeliverySent:
		return "✓"
	case models.DeliveryFailed:
		return "!"
	default:
		return " "
	}
}

func (m *ChatModel) setMessages(messages []models.Message) {
	m.messages = messages
	if m.follow || m.idx >= len(m.messages) {
		m.idx = len(m.messages) - 1
	}
	if m.idx < 0 {
		m.idx = 0
	}
}

func (m *ChatModel) selected() (models.Message, bool) {
	if len(m.messages) == 0 || m.idx < 0 || m.idx >= len(m.messages) {
		return models.Message{}, false
	}
	return m.messages[m.idx], true
}

// window returns the visible message range, keeping the selection on screen.
func (m *ChatModel) window() (int, int) {
	end := len(m.messages)
	if !m.follow && m.idx+1 < end {
		end = max(m.idx+1, min(end, visibleMessages))
	}
	start := max(0, end-visibleMessages)
	return start, end
}

func (m *ChatModel) cmdOpen() tea.Cmd {
	ctx, conv, id := m.ctx, m.conv, m.id
	return func() tea.Msg {
		messages, err := conv.Open(ctx)
		return chatOpenedMsg{id: id, messages: messages, err: err}
	}
}

func (m *ChatModel) cmdSend(content string) tea.Cmd {
	ctx, conv := m.ctx, m.conv
	return func() tea.Msg {
		_, err := conv.Send(ctx, content)
		return messageSentMsg{err: err}
	}
}

func (m *ChatModel) cmdRetry(localID string) tea.Cmd {
	ctx, conv := m.ctx, m.conv
	return func() tea.Msg {
		_, err := conv.Retry(ctx, localID)
		return messageSentMsg{err: err}
	}
}

func (m *ChatModel) cmdRefresh() tea.Cmd {
	ctx, conv := m.ctx, m.conv
	return func() tea.Msg {
		return chatRefreshedMsg{err: conv.Refresh(ctx)}
	}
}

func cmdCopy(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: copyToClipboard(text)}
	}
}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

func backToChats() tea.Cmd {
	return func() tea.Msg {
		return NavigateTo{Page: pageChats}
	}
}
