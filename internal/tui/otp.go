package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-konvo/internal/service"
)

// OtpModel asks for the one-time code. A failed verification consumes the
// code, so the page offers to request a new one.
type OtpModel struct {
	ctx     context.Context
	session service.SessionService
	flow    *onboarding

	input      textinput.Model
	submitting bool
	errMsg     string
	status     string
}

func NewOtpModel(ctx context.Context, session service.SessionService, flow *onboarding) *OtpModel {
	codeInput := textinput.New()
	codeInput.Placeholder = "123456"
	codeInput.CharLimit = 8
	codeInput.Width = 12
	codeInput.Focus()

	return &OtpModel{
		ctx:     ctx,
		session: session,
		flow:    flow,
		input:   codeInput,
	}
}

func (m *OtpModel) Init() tea.Cmd {
	m.input.SetValue("")
	m.submitting = false
	m.errMsg = ""
	m.status = ""
	if m.flow.phone == "" {
		// restored mid-flow
		m.flow.phone = m.session.Session().PhoneHandle
	}
	return textinput.Blink
}

func (m *OtpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case codeVerifiedMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			m.input.SetValue("")
		}
		return m, nil
	case codeRequestedMsg:
		if !msg.resend {
			return m, nil
		}
		m.submitting = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = "A new code was sent"
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.esc):
			return m, cmdLogout(m.ctx, m.session)
		case key.Matches(msg, keys.resend):
			if m.submitting || m.flow.phone == "" {
				return m, nil
			}
			m.submitting = true
			m.status = ""
			return m, cmdRequestCode(m.ctx, m.session, m.flow.phone, m.flow.name, true)
		case key.Matches(msg, keys.enter):
			if m.submitting {
				return m, nil
			}
			code := strings.TrimSpace(m.input.Value())
			if code == "" {
				m.errMsg = "Enter the code"
				return m, nil
			}
			m.errMsg = ""
			m.status = ""
			m.submitting = true
			return m, m.cmdVerify(code)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *OtpModel) View() string {
	var b strings.Builder
	b.WriteString("Code sent to ")
	b.WriteString(valueOrDash(m.flow.phone))
	b.WriteString("\n\nCode │ [")
	b.WriteString(m.input.View())
	b.WriteString("]\n")

	if m.submitting {
		b.WriteString("\n[Checking...]\n")
	}
	writeStatus(&b, m.status)
	writeError(&b, m.errMsg)

	return renderPage("ONE-TIME CODE", strings.TrimRight(b.String(), "\n"), "enter: verify │ ctrl+r: new code │ esc: change number")
}

func (m *OtpModel) cmdVerify(code string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		return codeVerifiedMsg{err: session.VerifyCode(ctx, code)}
	}
}
