// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-konvo/internal/adapter"
	"github.com/MKhiriev/go-konvo/internal/config"
	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/store"
	"github.com/MKhiriev/go-konvo/models"
)

// SessionManager owns the authentication state machine of the client:
//
//	unauthenticated -> otp_requested -> profile_incomplete -> authenticated
//
// Operations are serialised by opMu, so a gateway round trip of one
// operation never interleaves with another. Readers take snapshots under mu
// and never wait for the gateway.
//
// A transition that changes the token is written to the store under
// [store.SessionKey] before it is committed in memory and published.
type SessionManager struct {
	store   store.KeyValueStore
	gateway adapter.Gateway
	ttl     time.Duration
	now     func() time.Time
	logger  *logger.Logger

	opMu sync.Mutex

	mu        sync.RWMutex
	session   models.Session
	challenge *models.OtpChallenge

	restoreOnce sync.Once
	restoreErr  error

	events *Broker[models.SessionEvent]
}

// NewSessionManager creates a manager in the unauthenticated state. Call
// Restore to pick up a stored session.
func NewSessionManager(kv store.KeyValueStore, gateway adapter.Gateway, cfg config.ClientSession, log *logger.Logger) *SessionManager {
	if log == nil {
		log = logger.Nop()
	}
	ttl := cfg.ChallengeTTL
	if ttl == 0 {
		ttl = config.DefaultChallengeTTL
	}

	return &SessionManager{
		store:   kv,
		gateway: gateway,
		ttl:     ttl,
		now:     time.Now,
		logger:  log.WithComponent("session"),
		session: models.Session{State: models.SessionUnauthenticated},
		events:  NewBroker[models.SessionEvent](DefaultEventBuffer),
	}
}

// Restore reads the stored session exactly once per manager. Later calls
// return the current snapshot and the error of the first call.
func (m *SessionManager) Restore(ctx context.Context) (models.Session, error) {
	m.restoreOnce.Do(func() {
		m.restoreErr = m.restore(ctx)
	})
	return m.Session(), m.restoreErr
}

func (m *SessionManager) restore(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	raw, err := m.store.Get(ctx, store.SessionKey)
	if errors.Is(err, store.ErrKeyNotFound) {
		m.logger.Debug().Str("func", "SessionManager.Restore").Msg("no stored session")
		return nil
	}
	if err != nil {
		m.logger.Err(err).Str("func", "SessionManager.Restore").Msg("error reading stored session")
		return fmt.Errorf("%w: %w", ErrSessionRestoreFailed, err)
	}

	var stored models.Session
	if err = json.Unmarshal(raw, &stored); err != nil || stored.Token == "" || stored.Identity == nil {
		m.logger.Warn().Err(err).Str("func", "SessionManager.Restore").Msg("stored session is unusable, discarding")
		if delErr := m.store.Delete(ctx, store.SessionKey); delErr != nil {
			m.logger.Err(delErr).Str("func", "SessionManager.Restore").Msg("error discarding stored session")
		}
		return nil
	}

	stored.State = models.SessionAuthenticated
	if !stored.ProfileComplete {
		stored.State = models.SessionProfileIncomplete
	}
	if stored.IdentityID == "" {
		stored.IdentityID = stored.Identity.ID
	}

	m.logger.Info().
		Str("func", "SessionManager.Restore").
		Str("identity_id", stored.IdentityID).
		Str("state", stored.State.String()).
		Msg("session restored")
	m.commit(stored, nil, nil)
	return nil
}

// RequestCode opens a challenge for phone. It is only allowed while no token
// is held. On delivery failure the challenge is dropped and the state stays
// where it was.
func (m *SessionManager) RequestCode(ctx context.Context, phone, displayName string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	phone = strings.TrimSpace(phone)
	displayName = strings.TrimSpace(displayName)
	if phone == "" {
		return ErrInvalidPhone
	}

	current := m.Session()
	if current.State.HasToken() {
		return fmt.Errorf("%w: request code in state %s", ErrInvalidState, current.State)
	}

	challenge := models.NewOtpChallenge(phone, displayName, m.now())
	if err := m.gateway.RequestChallenge(ctx, phone, displayName); err != nil {
		m.logger.Err(err).Str("func", "SessionManager.RequestCode").Msg("error requesting one-time code")
		m.commit(current, nil, ErrChallengeDeliveryFailed)
		return fmt.Errorf("%w: %w", ErrChallengeDeliveryFailed, err)
	}

	next := models.Session{
		PhoneHandle: phone,
		State:       models.SessionOtpRequested,
		UpdatedAt:   m.now(),
	}
	m.logger.Debug().Str("func", "SessionManager.RequestCode").Msg("one-time code requested")
	m.commit(next, challenge, nil)
	return nil
}

// VerifyCode consumes the active challenge whatever the outcome. A rejected
// code leaves the manager in otp_requested without a challenge, so a new code
// has to be requested.
func (m *SessionManager) VerifyCode(ctx context.Context, code string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	current := m.Session()
	m.mu.Lock()
	challenge := m.challenge
	m.challenge = nil
	m.mu.Unlock()

	if current.State != models.SessionOtpRequested || challenge == nil || !challenge.Consume() {
		return ErrNoActiveChallenge
	}

	if challenge.Expired(m.now(), m.ttl) {
		m.commit(current, nil, ErrChallengeExpired)
		return ErrChallengeExpired
	}

	result, err := m.gateway.VerifyChallenge(ctx, challenge.PhoneHandle, strings.TrimSpace(code))
	complete := true
	switch {
	case err == nil:
		complete = result.Identity.HasCompleteProfile()
	case errors.Is(err, adapter.ErrIdentityNotFound) && result.Token != "":
		complete = false
	case errors.Is(err, adapter.ErrInvalidCode):
		m.logger.Debug().Str("func", "SessionManager.VerifyCode").Msg("one-time code rejected")
		m.commit(current, nil, ErrInvalidCode)
		return fmt.Errorf("%w: %w", ErrInvalidCode, err)
	default:
		m.logger.Err(err).Str("func", "SessionManager.VerifyCode").Msg("error verifying one-time code")
		m.commit(current, nil, ErrVerificationFailed)
		return fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	identity := result.Identity
	if identity.PhoneNumber == "" {
		identity.PhoneNumber = challenge.PhoneHandle
	}
	if !complete && identity.FirstName == "" {
		identity.FirstName = challenge.DisplayName
	}

	next := models.Session{
		IdentityID:      identity.ID,
		PhoneHandle:     challenge.PhoneHandle,
		Token:           result.Token,
		ProfileComplete: complete,
		State:           models.SessionProfileIncomplete,
		Identity:        &identity,
		UpdatedAt:       m.now(),
	}
	if complete {
		next.State = models.SessionAuthenticated
	}

	if err = m.persist(ctx, next); err != nil {
		m.commit(current, nil, ErrSessionPersistFailed)
		return err
	}

	m.logger.Info().
		Str("func", "SessionManager.VerifyCode").
		Str("identity_id", next.IdentityID).
		Str("state", next.State.String()).
		Msg("one-time code verified")
	m.commit(next, nil, nil)
	return nil
}

// CompleteProfile saves fields for an identity in profile_incomplete. When
// the gateway fails the fields are still applied locally and persisted with
// the session, and ErrProfileSaveFailed is returned; the state does not
// change.
func (m *SessionManager) CompleteProfile(ctx context.Context, fields models.ProfileFields) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	current := m.Session()
	if current.State != models.SessionProfileIncomplete {
		return fmt.Errorf("%w: complete profile in state %s", ErrInvalidState, current.State)
	}

	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	saved, err := m.gateway.SaveProfile(ctx, current.Token, fields)
	if errors.Is(err, adapter.ErrUnauthorized) {
		m.logoutLocked(ctx, ErrSessionExpired)
		return fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}

	next := current.Clone()
	if next.Identity == nil {
		next.Identity = &models.Identity{ID: current.IdentityID, PhoneNumber: current.PhoneHandle}
	}
	next.UpdatedAt = m.now()

	if err != nil {
		m.logger.Err(err).Str("func", "SessionManager.CompleteProfile").Msg("error saving profile")
		next.Identity.Apply(fields)
		if persistErr := m.persist(ctx, next); persistErr != nil {
			m.commit(current, nil, ErrProfileSaveFailed)
			return errors.Join(fmt.Errorf("%w: %w", ErrProfileSaveFailed, err), persistErr)
		}
		m.commit(next, nil, ErrProfileSaveFailed)
		return fmt.Errorf("%w: %w", ErrProfileSaveFailed, err)
	}

	if saved.ID != "" {
		identity := saved
		if identity.PhoneNumber == "" {
			identity.PhoneNumber = next.Identity.PhoneNumber
		}
		next.Identity = &identity
		next.IdentityID = identity.ID
	} else {
		next.Identity.Apply(fields)
	}
	next.ProfileComplete = true
	next.State = models.SessionAuthenticated

	if err = m.persist(ctx, next); err != nil {
		m.commit(current, nil, ErrSessionPersistFailed)
		return err
	}

	m.logger.Info().Str("func", "SessionManager.CompleteProfile").Str("identity_id", next.IdentityID).Msg("profile completed")
	m.commit(next, nil, nil)
	return nil
}

// Logout clears the credential, the stored session and every cached
// conversation, so the next identity signing in on this device starts with
// an empty history. The manager ends in unauthenticated even when the store
// fails; that error is returned.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	return m.logoutLocked(ctx, nil)
}

func (m *SessionManager) logoutLocked(ctx context.Context, signal error) error {
	err := m.store.Delete(ctx, store.SessionKey)
	if err != nil {
		m.logger.Err(err).Str("func", "SessionManager.Logout").Msg("error clearing stored session")
		err = fmt.Errorf("clearing stored session: %w", err)
	}
	if clearErr := m.clearConversations(ctx); clearErr != nil {
		m.logger.Err(clearErr).Str("func", "SessionManager.Logout").Msg("error clearing cached conversations")
		err = errors.Join(err, fmt.Errorf("clearing cached conversations: %w", clearErr))
	}

	m.logger.Info().Str("func", "SessionManager.Logout").Msg("logged out")
	m.commit(models.Session{State: models.SessionUnauthenticated, UpdatedAt: m.now()}, nil, signal)
	return err
}

func (m *SessionManager) clearConversations(ctx context.Context) error {
	keys, err := m.store.Keys(ctx, store.ConversationKeyPrefix)
	if err != nil {
		return err
	}

	var errs []error
	for _, key := range keys {
		if err = m.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HandleGatewayError implements CredentialsProvider.
func (m *SessionManager) HandleGatewayError(ctx context.Context, err error) bool {
	if !errors.Is(err, adapter.ErrUnauthorized) {
		return false
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if !m.State().HasToken() {
		return true
	}
	m.logger.Warn().Str("func", "SessionManager.HandleGatewayError").Msg("token rejected, logging out")
	_ = m.logoutLocked(ctx, ErrSessionExpired)
	return true
}

// Credentials implements CredentialsProvider.
func (m *SessionManager) Credentials() (string, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.session.State.HasToken() || m.session.Token == "" {
		return "", "", ErrNotAuthenticated
	}
	return m.session.Token, m.session.IdentityID, nil
}

// Session returns a snapshot of the current session.
func (m *SessionManager) Session() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Clone()
}

// State returns the current state.
func (m *SessionManager) State() models.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.State
}

// HasActiveChallenge reports whether a code can be verified right now.
func (m *SessionManager) HasActiveChallenge() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.challenge != nil && m.challenge.AttemptsRemaining > 0
}

// Subscribe implements SessionService.
func (m *SessionManager) Subscribe() (<-chan models.SessionEvent, func()) {
	return m.events.Subscribe()
}

func (m *SessionManager) persist(ctx context.Context, s models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSessionPersistFailed, err)
	}
	if err = m.store.Set(ctx, store.SessionKey, data); err != nil {
		m.logger.Err(err).Str("func", "SessionManager.persist").Msg("error persisting session")
		return fmt.Errorf("%w: %w", ErrSessionPersistFailed, err)
	}
	return nil
}

func (m *SessionManager) commit(s models.Session, challenge *models.OtpChallenge, signal error) {
	m.mu.Lock()
	m.session = s.Clone()
	m.challenge = challenge
	m.mu.Unlock()

	m.events.Publish(models.SessionEvent{Session: s.Clone(), Err: signal})
}
