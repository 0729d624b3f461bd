package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-konvo/internal/service"
	"github.com/MKhiriev/go-konvo/models"
)

const (
	pagePhone   = "phone"
	pageOtp     = "otp"
	pageProfile = "profile"
	pageChats   = "chats"
	pageChat    = "chat"
)

// leaver is implemented by pages holding resources that must be released
// when the page is left.
type leaver interface {
	leave()
}

// RootModel is a TUI router:
// 1) keeps active page
// 2) follows session transitions
// 3) handles global hotkeys and NavigateTo messages
// 4) delegates all other messages to the active page
type RootModel struct {
	session service.SessionService
	events  <-chan models.SessionEvent

	pages   map[string]tea.Model
	current string

	buildInfo     models.AppBuildInfo
	showBuildInfo bool
	showError     bool
	errorOverlay  errorOverlayModel

	quitByUser bool
}

// NewRootModel registers all pages and opens the one matching the current
// session state.
func NewRootModel(ctx context.Context, session service.SessionService, conversations Conversations, events <-chan models.SessionEvent, buildInfo models.AppBuildInfo) RootModel {
	flow := &onboarding{}
	pages := map[string]tea.Model{
		pagePhone:   NewPhoneModel(ctx, session, flow),
		pageOtp:     NewOtpModel(ctx, session, flow),
		pageProfile: NewProfileModel(ctx, session),
		pageChats:   NewChatsModel(ctx, session, conversations),
		pageChat:    NewChatModel(ctx, session, conversations),
	}

	return RootModel{
		session:   session,
		events:    events,
		pages:     pages,
		current:   pageForState(session.Session().State),
		buildInfo: buildInfo,
	}
}

func pageForState(state models.SessionState) string {
	switch state {
	case models.SessionOtpRequested:
		return pageOtp
	case models.SessionProfileIncomplete:
		return pageProfile
	case models.SessionAuthenticated:
		return pageChats
	default:
		return pagePhone
	}
}

// waitSessionEvent blocks on the subscription and hands the next transition
// to the program. A closed channel ends the loop.
func waitSessionEvent(events <-chan models.SessionEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return sessionEventMsg{event: ev}
	}
}

func (r RootModel) Init() tea.Cmd {
	return tea.Batch(waitSessionEvent(r.events), r.page().Init())
}

func (r RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.quit) {
			r.quitByUser = true
			r.leaveCurrent()
			return r, tea.Quit
		}
		if r.showError {
			if key.Matches(msg, keys.enter) || key.Matches(msg, keys.esc) {
				r.showError = false
				r.errorOverlay.message = ""
			}
			return r, nil
		}
		if r.showBuildInfo {
			if key.Matches(msg, keys.esc) || key.Matches(msg, keys.version) {
				r.showBuildInfo = false
			}
			return r, nil
		}
		if r.current == pageChats && key.Matches(msg, keys.version) && !r.pages[pageChats].(*ChatsModel).typing() {
			r.showBuildInfo = true
			return r, nil
		}

	case sessionEventMsg:
		next := pageForState(msg.event.Session.State)
		if errors.Is(msg.event.Err, service.ErrSessionExpired) {
			r.showError = true
			r.errorOverlay.message = humanizeError(msg.event.Err)
		}

		cmds := []tea.Cmd{waitSessionEvent(r.events)}
		if next != r.current && !(r.current == pageChat && next == pageChats) {
			cmds = append(cmds, r.switchTo(next))
		}
		return r, tea.Batch(cmds...)

	case NavigateTo:
		if _, exists := r.pages[msg.Page]; !exists {
			return r, nil
		}
		cmd := r.switchTo(msg.Page)
		if msg.Payload != nil {
			payload := msg.Payload
			return r, func() tea.Msg { return payload }
		}
		return r, cmd
	}

	updated, cmd := r.page().Update(msg)
	r.pages[r.current] = updated
	return r, cmd
}

func (r RootModel) View() string {
	if r.showError {
		return r.errorOverlay.View()
	}
	if r.showBuildInfo {
		return renderBuildInfoWindow(r.buildInfo)
	}
	return r.page().View()
}

func (r RootModel) page() tea.Model {
	return r.pages[r.current]
}

func (r *RootModel) switchTo(page string) tea.Cmd {
	r.leaveCurrent()
	r.showBuildInfo = false
	r.current = page
	return r.page().Init()
}

func (r *RootModel) leaveCurrent() {
	if l, ok := r.page().(leaver); ok {
		l.leave()
	}
}
