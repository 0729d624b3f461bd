// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-konvo/internal/service"
)

// onboarding carries what the user typed on the phone page to the code
// page, so a new code can be requested without retyping.
type onboarding struct {
	phone string
	name  string
}

// PhoneModel is the Bubble Tea model for the first onboarding screen. It
// renders the phone number and display name inputs and requests a one-time
// code on submit. The move to the code screen is driven by the resulting
// session transition, not by this page.
type PhoneModel struct {
	ctx     context.Context
	session service.SessionService
	flow    *onboarding

	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string
}

// NewPhoneModel creates a [PhoneModel]. The phone input receives focus
// immediately.
func NewPhoneModel(ctx context.Context, session service.SessionService, flow *onboarding) *PhoneModel {
	phoneInput := textinput.New()
	phoneInput.Placeholder = "+233555111222"
	phoneInput.CharLimit = 20
	phoneInput.Width = 40
	phoneInput.Focus()

	nameInput := textinput.New()
	nameInput.Placeholder = "your name"
	nameInput.CharLimit = 64
	nameInput.Width = 40

	return &PhoneModel{
		ctx:     ctx,
		session: session,
		flow:    flow,
		inputs:  []textinput.Model{phoneInput, nameInput},
	}
}

// Init implements [tea.Model].
func (m *PhoneModel) Init() tea.Cmd {
	m.submitting = false
	return textinput.Blink
}

// Update implements [tea.Model]. Handled messages:
//   - [codeRequestedMsg]: clears submitting state; on error, populates errMsg.
//   - tab / shift+tab: moves focus between the inputs.
//   - enter: validates the phone number and dispatches the code request.
//
// All other key events are forwarded to the focused input widget.
func (m *PhoneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(codeRequestedMsg); ok {
		m.submitting = false
		if result.err != nil {
			m.errMsg = humanizeError(result.err)
		}
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.tab):
			m.focus = focusNext(m.inputs, m.focus)
			return m, nil
		case key.Matches(keyMsg, keys.backtab):
			m.focus = focusPrev(m.inputs, m.focus)
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			if m.submitting {
				return m, nil
			}

			phone := strings.TrimSpace(m.inputs[0].Value())
			name := strings.TrimSpace(m.inputs[1].Value())
			if phone == "" {
				m.errMsg = humanizeError(service.ErrInvalidPhone)
				return m, nil
			}

			m.flow.phone, m.flow.name = phone, name
			m.errMsg = ""
			m.submitting = true
			return m, cmdRequestCode(m.ctx, m.session, phone, name, false)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View implements [tea.Model].
func (m *PhoneModel) View() string {
	var b strings.Builder
	b.WriteString("Field   │ Value\n")
	b.WriteString("────────┼────────────────────────────────────────────\n")
	b.WriteString("Phone   │ [")
	b.WriteString(m.inputs[0].View())
	b.WriteString("]\n")
	b.WriteString("Name    │ [")
	b.WriteString(m.inputs[1].View())
	b.WriteString("]\n")

	if m.submitting {
		b.WriteString("\n[Sending code...]\n")
	} else {
		b.WriteString("\n[Send code]\n")
	}
	writeError(&b, m.errMsg)

	return renderPage("SIGN IN", strings.TrimRight(b.String(), "\n"), "tab: next field │ enter: send code")
}

func cmdRequestCode(ctx context.Context, session service.SessionService, phone, name string, resend bool) tea.Cmd {
	return func() tea.Msg {
		return codeRequestedMsg{err: session.RequestCode(ctx, phone, name), resend: resend}
	}
}

func cmdLogout(ctx context.Context, session service.SessionService) tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: session.Logout(ctx)}
	}
}

func focusNext(inputs []textinput.Model, focus int) int {
	inputs[focus].Blur()
	focus = (focus + 1) % len(inputs)
	inputs[focus].Focus()
	return focus
}

func focusPrev(inputs []textinput.Model, focus int) int {
	inputs[focus].Blur()
	focus = (focus - 1 + len(inputs)) % len(inputs)
	inputs[focus].Focus()
	return focus
}
