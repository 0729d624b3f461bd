package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-konvo/internal/service"
	"github.com/MKhiriev/go-konvo/models"
)

const (
	profileFirstName = iota
	profileLastName
	profileUsername
	profileBio
)

var profileLabels = []string{"First name", "Last name", "Username", "Bio"}

// ProfileModel finishes profile setup of a freshly verified identity.
type ProfileModel struct {
	ctx     context.Context
	session service.SessionService

	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string
}

func NewProfileModel(ctx context.Context, session service.SessionService) *ProfileModel {
	inputs := make([]textinput.Model, len(profileLabels))
	for i := range inputs {
		in := textinput.New()
		in.CharLimit = 64
		in.Width = 40
		inputs[i] = in
	}
	inputs[profileUsername].Placeholder = "no spaces"
	inputs[profileBio].CharLimit = 140

	return &ProfileModel{
		ctx:     ctx,
		session: session,
		inputs:  inputs,
	}
}

// Init prefills the inputs from the identity held by the session.
func (m *ProfileModel) Init() tea.Cmd {
	m.submitting = false
	m.errMsg = ""

	if identity := m.session.Session().Identity; identity != nil {
		prefill := []string{identity.FirstName, identity.LastName, identity.Username, identity.Bio}
		for i, v := range prefill {
			if m.inputs[i].Value() == "" {
				m.inputs[i].SetValue(v)
			}
		}
	}

	m.inputs[m.focus].Blur()
	m.focus = profileFirstName
	m.inputs[m.focus].Focus()
	return textinput.Blink
}

func (m *ProfileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(profileSavedMsg); ok {
		m.submitting = false
		if result.err != nil {
			m.errMsg = humanizeError(result.err)
		}
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.esc):
			return m, cmdLogout(m.ctx, m.session)
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
			fields := m.fields()
			if err := fields.Validate(); err != nil {
				m.errMsg = humanizeError(service.ErrInvalidProfile)
				return m, nil
			}
			m.errMsg = ""
			m.submitting = true
			return m, m.cmdSave(fields)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *ProfileModel) View() string {
	var b strings.Builder
	b.WriteString("Field      │ Value\n")
	b.WriteString("───────────┼────────────────────────────────────────────\n")
	for i, label := range profileLabels {
		b.WriteString(fmt.Sprintf("%-10s │ [%s]\n", label, m.inputs[i].View()))
	}

	if m.submitting {
		b.WriteString("\n[Saving...]\n")
	} else {
		b.WriteString("\n[Save]\n")
	}
	writeError(&b, m.errMsg)

	return renderPage("YOUR PROFILE", strings.TrimRight(b.String(), "\n"), "tab: next field │ enter: save │ esc: sign out")
}

func (m *ProfileModel) fields() models.ProfileFields {
	return models.ProfileFields{
		FirstName: m.inputs[profileFirstName].Value(),
		LastName:  m.inputs[profileLastName].Value(),
		Username:  m.inputs[profileUsername].Value(),
		Bio:       m.inputs[profileBio].Value(),
	}.Normalize()
}

func (m *ProfileModel) cmdSave(fields models.ProfileFields) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		return profileSavedMsg{err: session.CompleteProfile(ctx, fields)}
	}
}
