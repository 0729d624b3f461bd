// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-konvo/internal/config"
	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/utils"
	"github.com/MKhiriev/go-konvo/models"
)

const (
	// StubTokenIssuer is the iss claim of tokens issued by [StubGateway].
	StubTokenIssuer = "konvo-stub"

	// StubCodeTTL is how long an issued code is accepted.
	StubCodeTTL = 10 * time.Minute

	stubCodeDigits = 6
)

type pendingCode struct {
	code        string
	displayName string
	issuedAt    time.Time
}

// StubGateway is an in-memory messaging backend. Codes are not delivered
// anywhere: the configured fixed code is accepted, or a random code is
// generated and written to the log.
type StubGateway struct {
	mu            sync.Mutex
	codes         map[string]pendingCode
	identities    map[string]*models.Identity // by id
	phones        map[string]string           // phone -> identity id
	conversations map[string][]models.RemoteMessage

	offline atomic.Bool

	cfg    config.ClientStub
	ids    *utils.UUIDGenerator
	now    func() time.Time
	logger *logger.Logger
}

// NewStubGateway returns an empty stub backend.
func NewStubGateway(cfg config.ClientStub, log *logger.Logger) *StubGateway {
	if cfg.TokenDuration <= 0 {
		cfg.TokenDuration = config.DefaultTokenDuration
	}

	return &StubGateway{
		codes:         make(map[string]pendingCode),
		identities:    make(map[string]*models.Identity),
		phones:        make(map[string]string),
		conversations: make(map[string][]models.RemoteMessage),
		cfg:           cfg,
		ids:           utils.NewUUIDGenerator(),
		now:           time.Now,
		logger:        log.WithComponent("stub_gateway"),
	}
}

// SetOffline makes every call fail with [ErrUnavailable] until switched back.
func (s *StubGateway) SetOffline(offline bool) {
	s.offline.Store(offline)
}

// Seed appends messages to a conversation as if other participants had sent
// them.
func (s *StubGateway) Seed(conversationID string, messages ...models.RemoteMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range messages {
		m.ConversationID = conversationID
		if m.ID == "" {
			m.ID = s.ids.Generate()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = s.now().UTC()
		}
		s.conversations[conversationID] = append(s.conversations[conversationID], m)
	}
}

// ParseToken validates a token issued by this backend.
func (s *StubGateway) ParseToken(token string) (models.Token, error) {
	parsed, err := utils.ValidateAndParseJWTToken(token, s.cfg.TokenSignKey, StubTokenIssuer)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	s.mu.Lock()
	_, known := s.identities[parsed.IdentityID]
	s.mu.Unlock()
	if !known {
		return models.Token{}, fmt.Errorf("%w: unknown identity", ErrUnauthorized)
	}

	return parsed, nil
}

// RequestChallenge implements [Gateway].
func (s *StubGateway) RequestChallenge(ctx context.Context, phone, displayName string) error {
	if err := s.available(ctx); err != nil {
		return err
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("%w: phone number is required", ErrBadRequest)
	}

	code := s.cfg.Code
	if code == "" {
		var err error
		if code, err = utils.GenerateNumericCode(stubCodeDigits); err != nil {
			return fmt.Errorf("%w: generating code: %w", ErrInternalServerError, err)
		}
	}

	s.mu.Lock()
	s.codes[phone] = pendingCode{code: code, displayName: strings.TrimSpace(displayName), issuedAt: s.now()}
	s.mu.Unlock()

	s.logger.Info().Str("phone", phone).Str("code", code).Msg("one-time code issued")
	return nil
}

// VerifyChallenge implements [Gateway]. A new phone handle gets an identity
// with the requested display name as first name and no username, so profile
// setup is still required.
func (s *StubGateway) VerifyChallenge(ctx context.Context, phone, code string) (models.AuthResult, error) {
	if err := s.available(ctx); err != nil {
		return models.AuthResult{}, err
	}

	phone = strings.TrimSpace(phone)

	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.codes[phone]
	if !ok || pending.code != strings.TrimSpace(code) || s.now().Sub(pending.issuedAt) >= StubCodeTTL {
		delete(s.codes, phone)
		return models.AuthResult{}, fmt.Errorf("%w: code does not match", ErrInvalidCode)
	}
	delete(s.codes, phone)

	isNew := false
	id, found := s.phones[phone]
	if !found {
		isNew = true
		id = s.ids.Generate()
		s.phones[phone] = id
		s.identities[id] = &models.Identity{ID: id, PhoneNumber: phone, FirstName: pending.displayName}
	}
	identity := *s.identities[id]

	token, err := utils.GenerateJWTToken(StubTokenIssuer, id, phone, s.cfg.TokenDuration, s.cfg.TokenSignKey)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("%w: %w", ErrInternalServerError, err)
	}

	result := models.AuthResult{Token: token.String(), Identity: identity}
	if isNew || !identity.HasCompleteProfile() {
		return result, ErrIdentityNotFound
	}
	return result, nil
}

// SaveProfile implements [Gateway].
func (s *StubGateway) SaveProfile(ctx context.Context, token string, fields models.ProfileFields) (models.Identity, error) {
	if err := s.available(ctx); err != nil {
		return models.Identity{}, err
	}

	parsed, err := s.ParseToken(token)
	if err != nil {
		return models.Identity{}, err
	}

	fields = fields.Normalize()
	if err = fields.Validate(); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, other := range s.identities {
		if id != parsed.IdentityID && strings.EqualFold(other.Username, fields.Username) {
			return models.Identity{}, fmt.Errorf("%w: username %q is taken", ErrConflict, fields.Username)
		}
	}

	identity := s.identities[parsed.IdentityID]
	identity.Apply(fields)
	return *identity, nil
}

// FetchConversation implements [Gateway].
func (s *StubGateway) FetchConversation(ctx context.Context, token, conversationID string) ([]models.Message, error) {
	if err := s.available(ctx); err != nil {
		return nil, err
	}
	if _, err := s.ParseToken(token); err != nil {
		return nil, err
	}

	s.mu.Lock()
	remote := slices.Clone(s.conversations[conversationID])
	s.mu.Unlock()

	messages := make([]models.Message, 0, len(remote))
	for _, rm := range remote {
		messages = append(messages, rm.ToMessage(models.DeliveryReceived))
	}
	return messages, nil
}

// SendMessage implements [Gateway].
func (s *StubGateway) SendMessage(ctx context.Context, token, conversationID, content string) (models.Message, error) {
	if err := s.available(ctx); err != nil {
		return models.Message{}, err
	}

	parsed, err := s.ParseToken(token)
	if err != nil {
		return models.Message{}, err
	}
	if strings.TrimSpace(conversationID) == "" || strings.TrimSpace(content) == "" {
		return models.Message{}, fmt.Errorf("%w: conversation and content are required", ErrBadRequest)
	}

	rm := models.RemoteMessage{
		ID:             s.ids.Generate(),
		ConversationID: conversationID,
		SenderID:       parsed.IdentityID,
		Content:        content,
		CreatedAt:      s.now().UTC(),
	}

	s.mu.Lock()
	s.conversations[conversationID] = append(s.conversations[conversationID], rm)
	s.mu.Unlock()

	return rm.ToMessage(models.DeliverySent), nil
}

func (s *StubGateway) available(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return transportError("stub", err)
	}
	if s.offline.Load() {
		return fmt.Errorf("%w: stub backend is offline", ErrUnavailable)
	}
	return nil
}
