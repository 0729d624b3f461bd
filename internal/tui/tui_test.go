package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-konvo/internal/adapter"
	"github.com/MKhiriev/go-konvo/internal/mock"
	"github.com/MKhiriev/go-konvo/internal/service"
	"github.com/MKhiriev/go-konvo/models"
)

// fakeConversations hands out one prepared conversation and records calls.
type fakeConversations struct {
	conv     service.ConversationService
	cached   []string
	closed   []string
	closeAll int
}

func (f *fakeConversations) Get(string) service.ConversationService { return f.conv }
func (f *fakeConversations) Close(id string)                        { f.closed = append(f.closed, id) }
func (f *fakeConversations) CloseAll()                              { f.closeAll++ }
func (f *fakeConversations) Cached(context.Context) ([]string, error) {
	return f.cached, nil
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	ctrlR    = tea.KeyMsg{Type: tea.KeyCtrlR}
	ctrlY    = tea.KeyMsg{Type: tea.KeyCtrlY}
	upKey    = tea.KeyMsg{Type: tea.KeyUp}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func authenticatedSession() models.Session {
	return models.Session{
		IdentityID:      "id-1",
		PhoneHandle:     "+233555111222",
		Token:           "token",
		ProfileComplete: true,
		State:           models.SessionAuthenticated,
		Identity:        &models.Identity{ID: "id-1", FirstName: "Ada", Username: "ada"},
	}
}

func TestPageForState(t *testing.T) {
	tests := []struct {
		state models.SessionState
		want  string
	}{
		{models.SessionUnauthenticated, pagePhone},
		{models.SessionOtpRequested, pageOtp},
		{models.SessionProfileIncomplete, pageProfile},
		{models.SessionAuthenticated, pageChats},
		{"", pagePhone},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, pageForState(tt.state))
		})
	}
}

func TestHumanizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "wrapped invalid code", err: fmt.Errorf("verify: %w", service.ErrInvalidCode), want: "Wrong code, request a new one (ctrl+r)"},
		{name: "send failure", err: errors.Join(service.ErrSendFailed, adapter.ErrUnavailable), want: "Not delivered, select it and press ctrl+r to retry"},
		{name: "network", err: errors.New("dial tcp 127.0.0.1:8080: connection refused"), want: "No network or the server is unavailable"},
		{name: "anything else", err: errors.New("boom"), want: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, humanizeError(tt.err))
		})
	}
}

// ── onboarding pages ────────────────────────────────────────────────────────

func TestPhoneModel_RequiresPhone(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := mock.NewMockSessionService(ctrl)
	m := NewPhoneModel(context.Background(), session, &onboarding{})

	_, cmd := m.Update(enterKey)

	assert.Nil(t, cmd)
	assert.Equal(t, "Phone number is required", m.errMsg)
	assert.Contains(t, m.View(), "Phone number is required")
}

func TestPhoneModel_RequestsCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := mock.NewMockSessionService(ctrl)
	flow := &onboarding{}
	m := NewPhoneModel(context.Background(), session, flow)
	m.inputs[0].SetValue(" +233555111222 ")
	m.inputs[1].SetValue("Ada")

	session.EXPECT().RequestCode(gomock.Any(), "+233555111222", "Ada").Return(service.ErrChallengeDeliveryFailed)

	_, cmd := m.Update(enterKey)
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)
	assert.Equal(t, "+233555111222", flow.phone)

	// a second enter while submitting is ignored
	_, again := m.Update(enterKey)
	assert.Nil(t, again)

	m.Update(cmd())
	assert.False(t, m.submitting)
	assert.Equal(t, "The code could not be sent, try again", m.errMsg)
}

func TestOtpModel_VerifyAndResend(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := mock.NewMockSessionService(ctrl)
	flow := &onboarding{phone: "+233555111222", name: "Ada"}
	m := NewOtpModel(context.Background(), session, flow)
	m.Init()

	gomock.InOrder(
		session.EXPECT().VerifyCode(gomock.Any(), "482913").Return(service.ErrInvalidCode),
		session.EXPECT().RequestCode(gomock.Any(), "+233555111222", "Ada").Return(nil),
	)

	m.input.SetValue("482913")
	_, cmd := m.Update(enterKey)
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, "Wrong code, request a new one (ctrl+r)", m.errMsg)
	assert.Empty(t, m.input.Value())

	_, cmd = m.Update(ctrlR)
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, codeRequestedMsg{resend: true}, msg)
	m.Update(msg)
	assert.Empty(t, m.errMsg)
	assert.Equal(t, "A new code was sent", m.status)
}

func TestOtpModel_IgnoresFirstCodeRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := mock.NewMockSessionService(ctrl)
	m := NewOtpModel(context.Background(), session, &onboarding{phone: "+1"})

	m.Update(codeRequestedMsg{err: service.ErrChallengeDeliveryFailed})

	assert.Empty(t, m.errMsg)
}

func TestOtpModel_EscSignsOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := mock.NewMockSessionService(ctrl)
	m := NewOtpModel(context.Background(), session, &onboarding{phone: "+1"})
	session.EXPECT().Logout(gomock.Any()).Return(nil)

	_, cmd := m.Update(escKey)
	require.NotNil(t, cmd)
	assert.Equal(t, loggedOutMsg{}, cmd())
}

func TestProfileModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := mock.NewMockSessionService(ctrl)
	session.EXPECT().Session().Return(models.Session{
		State:    models.SessionProfileIncomplete,
		Identity: &models.Identity{ID: "id-1", FirstName: "Ada"},
	}).AnyTimes()
	m := NewProfileModel(context.Background(), session)
	m.Init()
	assert.Equal(t, "Ada", m.inputs[profileFirstName].Value())

	t.Run("username is required", func(t *testing.T) {
		_, cmd := m.Update(enterKey)
		assert.Nil(t, cmd)
		assert.Equal(t, "First name and a username without spaces are required", m.errMsg)
	})

	t.Run("save failure is shown", func(t *testing.T) {
		m.inputs[profileUsername].SetValue("  ada ")
		session.EXPECT().
			CompleteProfile(gomock.Any(), models.ProfileFields{FirstName: "Ada", Username: "ada"}).
			Return(service.ErrProfileSaveFailed)

		_, cmd := m.Update(enterKey)
		require.NotNil(t, cmd)
		m.Update(cmd())
		assert.Equal(t, "Profile kept on this device but not saved, try again", m.errMsg)
		assert.False(t, m.submitting)
	})
}

// ── router ──────────────────────────────────────────────────────────────────

func TestRootModel_FollowsSessionTransitions(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := mock.NewMockSessionService(ctrl)
	current := models.Session{State: models.SessionUnauthenticated}
	session.EXPECT().Session().DoAndReturn(func() models.Session { return current }).AnyTimes()

	events := make(chan models.SessionEvent, 1)
	root := NewRootModel(context.Background(), session, &fakeConversations{}, events, models.NewAppBuildInfo("1.0.0", "", ""))
	assert.Equal(t, pagePhone, root.current)

	step := func(ev models.SessionEvent) {
		current = ev.Session
		updated, cmd := root.Update(sessionEventMsg{event: ev})
		root = updated.(RootModel)
		assert.NotNil(t, cmd)
	}

	step(models.SessionEvent{Session: models.Session{State: models.SessionOtpRequested, PhoneHandle: "+1"}})
	assert.Equal(t, pageOtp, root.current)

	step(models.SessionEvent{Session: authenticatedSession()})
	assert.Equal(t, pageChats, root.current)
	assert.Contains(t, root.View(), "Signed in as Ada")

	step(models.SessionEvent{Session: models.Session{State: models.SessionUnauthenticated}, Err: service.ErrSessionExpired})
	assert.Equal(t, pagePhone, root.current)
	assert.True(t, root.showError)
	assert.Contains(t, root.View(), "Session expired")

	updated, _ := root.Update(enterKey)
	root = updated.(RootModel)
	assert.False(t, root.showError)
}

func TestRootModel_WaitsForSessionEvents(t *testing.T) {
	events := make(chan models.SessionEvent, 1)
	events <- models.SessionEvent{Session: authenticatedSession()}

	msg := waitSessionEvent(events)()
	assert.Equal(t, sessionEventMsg{event: models.SessionEvent{Session: authenticatedSession()}}, msg)

	close(events)
	assert.Nil(t, waitSessionEvent(events)())
	assert.Nil(t, waitSessionEvent(nil))
}

func TestRootModel_GlobalKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := mock.NewMockSessionService(ctrl)
	session.EXPECT().Session().Return(authenticatedSession()).AnyTimes()

	root := NewRootModel(context.Background(), session, &fakeConversations{}, nil, models.NewAppBuildInfo("1.2.3", "2026-01-01", "abc"))
	require.Equal(t, pageChats, root.current)

	updated, _ := root.Update(runeKey('v'))
	root = updated.(RootModel)
	assert.True(t, root.showBuildInfo)
	assert.Contains(t, root.View(), "Version: 1.2.3")

	updated, _ = root.Update(escKey)
	root = updated.(RootModel)
	assert.False(t, root.showBuildInfo)

	updated, cmd := root.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	root = updated.(RootModel)
	assert.True(t, root.quitByUser)
	assert.Equal(t, tea.Quit(), cmd())
}

// ── conversations ───────────────────────────────────────────────────────────

func TestChatsModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	session := mock.NewMockSessionService(ctrl)
	session.EXPECT().Session().Return(authenticatedSession()).AnyTimes()
	conversations := &fakeConversations{cached: []string{"c1", "c2"}}
	m := NewChatsModel(context.Background(), session, conversations)

	cmd := m.Init()
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, []string{"c1", "c2"}, m.ids)

	m.Update(runeKey('j'))
	_, cmd = m.Update(enterKey)
	require.NotNil(t, cmd)
	assert.Equal(t, NavigateTo{Page: pageChat, Payload: openChatMsg{id: "c2"}}, cmd())

	m.Update(runeKey('n'))
	assert.True(t, m.typing())
	m.idInput.SetValue("c9")
	_, cmd = m.Update(enterKey)
	require.NotNil(t, cmd)
	assert.Equal(t, NavigateTo{Page: pageChat, Payload: openChatMsg{id: "c9"}}, cmd())
	assert.False(t, m.typing())

	session.EXPECT().Logout(gomock.Any()).Return(nil)
	_, cmd = m.Update(runeKey('l'))
	require.NotNil(t, cmd)
	assert.Equal(t, loggedOutMsg{}, cmd())
	assert.Equal(t, 1, conversations.closeAll)
}

func chatFixture(t *testing.T) (*ChatModel, *mock.MockConversationService, *fakeConversations, chan models.ConversationEvent) {
	t.Helper()
	ctrl := gomock.NewController(t)
	session := mock.NewMockSessionService(ctrl)
	session.EXPECT().Session().Return(authenticatedSession()).AnyTimes()
	conv := mock.NewMockConversationService(ctrl)
	conversations := &fakeConversations{conv: conv}

	events := make(chan models.ConversationEvent, 4)
	conv.EXPECT().Subscribe().Return((<-chan models.ConversationEvent)(events), func() {})

	m := NewChatModel(context.Background(), session, conversations)
	_, cmd := m.Update(openChatMsg{id: "c1"})
	require.NotNil(t, cmd)
	return m, conv, conversations, events
}

func chatMessage(localID, content string, offset time.Duration, state models.DeliveryState) models.Message {
	ts := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC).Add(offset)
	return models.Message{
		LocalID:            localID,
		ConversationID:     "c1",
		SenderID:           "id-1",
		Content:            content,
		CreatedAt:          ts,
		EffectiveTimestamp: ts,
		DeliveryState:      state,
	}
}

func TestChatModel_RendersEventSnapshots(t *testing.T) {
	m, _, _, events := chatFixture(t)

	snapshot := []models.Message{
		chatMessage("r1", "hello", 0, models.DeliveryReceived),
		chatMessage("l1", "hi", time.Minute, models.DeliveryFailed),
	}
	snapshot[0].SenderID = "peer"
	_, cmd := m.Update(conversationEventMsg{event: models.ConversationEvent{ConversationID: "c1", Messages: snapshot}})
	require.NotNil(t, cmd, "keeps waiting for events")

	assert.False(t, m.loading)
	assert.Equal(t, 1, m.idx)
	view := m.View()
	assert.Contains(t, view, "them")
	assert.Contains(t, view, "hello")
	assert.Contains(t, view, "! hi")

	events <- models.ConversationEvent{ConversationID: "c1", Messages: snapshot, Err: service.ErrSyncUnavailable}
	m.Update(cmd())
	assert.Equal(t, "Messages could not be refreshed, showing saved copy", m.errMsg)

	// events of another conversation are ignored
	_, cmd = m.Update(conversationEventMsg{event: models.ConversationEvent{ConversationID: "c2"}})
	assert.Nil(t, cmd)
}

func TestChatModel_SendAndRetry(t *testing.T) {
	m, conv, _, _ := chatFixture(t)
	failed := chatMessage("l1", "hi", 0, models.DeliveryFailed)
	m.Update(conversationEventMsg{event: models.ConversationEvent{
		ConversationID: "c1",
		Messages:       []models.Message{chatMessage("r0", "older", -time.Minute, models.DeliveryReceived), failed},
	}})

	conv.EXPECT().Send(gomock.Any(), "next").Return(models.Message{}, service.ErrSendFailed)
	m.input.SetValue("next")
	_, cmd := m.Update(enterKey)
	require.NotNil(t, cmd)
	assert.Empty(t, m.input.Value())
	m.Update(cmd())
	assert.Equal(t, "Not delivered, select it and press ctrl+r to retry", m.errMsg)

	// a received entry cannot be retried
	m.Update(upKey)
	_, cmd = m.Update(ctrlR)
	assert.Nil(t, cmd)
	assert.Equal(t, "Only failed messages can be retried", m.errMsg)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	conv.EXPECT().Retry(gomock.Any(), "l1").Return(failed, nil)
	_, cmd = m.Update(ctrlR)
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Empty(t, m.errMsg)
}

func TestChatModel_BlankInputIsNotSent(t *testing.T) {
	m, _, _, _ := chatFixture(t)
	m.input.SetValue("   ")

	_, cmd := m.Update(enterKey)

	assert.Nil(t, cmd)
}

func TestChatModel_Copy(t *testing.T) {
	var copied string
	original := copyToClipboard
	copyToClipboard = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { copyToClipboard = original })

	m, _, _, _ := chatFixture(t)
	m.Update(conversationEventMsg{event: models.ConversationEvent{
		ConversationID: "c1",
		Messages:       []models.Message{chatMessage("r1", "copy me", 0, models.DeliveryReceived)},
	}})

	_, cmd := m.Update(ctrlY)
	require.NotNil(t, cmd)
	_, clear := m.Update(cmd())
	assert.Equal(t, "copy me", copied)
	assert.Equal(t, "Copied!", m.status)
	assert.NotNil(t, clear)

	m.Update(clearStatusMsg{})
	assert.Empty(t, m.status)
}

func TestChatModel_LeaveClosesConversation(t *testing.T) {
	m, _, conversations, _ := chatFixture(t)

	_, cmd := m.Update(escKey)
	require.NotNil(t, cmd)
	assert.Equal(t, NavigateTo{Page: pageChats}, cmd())

	m.leave()
	m.leave()
	assert.Equal(t, []string{"c1"}, conversations.closed)
	assert.Nil(t, m.conv)
}
