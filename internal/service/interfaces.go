package service

import (
	"context"

	"github.com/MKhiriev/go-konvo/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// SessionService drives the authentication flow of the client and owns the
// stored credential.
type SessionService interface {
	// Restore loads the stored session once per process. No network call is
	// made; a stored token is trusted until the gateway rejects it.
	Restore(ctx context.Context) (models.Session, error)

	// RequestCode asks the gateway to deliver a one-time code to phone and
	// opens a challenge for it.
	RequestCode(ctx context.Context, phone, displayName string) error

	// VerifyCode consumes the active challenge with code.
	VerifyCode(ctx context.Context, code string) error

	// CompleteProfile saves the profile of a freshly verified identity.
	CompleteProfile(ctx context.Context, fields models.ProfileFields) error

	// Logout drops the credential and the stored session.
	Logout(ctx context.Context) error

	// Session returns a snapshot of the current session.
	Session() models.Session

	// Subscribe returns a channel receiving a SessionEvent after every
	// transition, plus a function that cancels the subscription.
	Subscribe() (<-chan models.SessionEvent, func())

	CredentialsProvider
}

// CredentialsProvider hands the current credential to conversation sync and
// takes back gateway errors that may end the session.
type CredentialsProvider interface {
	// Credentials returns the token and identity id of the session, or
	// ErrNotAuthenticated.
	Credentials() (token, identityID string, err error)

	// HandleGatewayError performs an implicit logout when err reports a
	// rejected token. It reports whether err was such an error.
	HandleGatewayError(ctx context.Context, err error) bool
}

// ConversationService is the offline-first view of one conversation.
type ConversationService interface {
	ID() string
	Open(ctx context.Context) ([]models.Message, error)
	Refresh(ctx context.Context) error
	Send(ctx context.Context, content string) (models.Message, error)
	Retry(ctx context.Context, localID string) (models.Message, error)
	Messages() []models.Message
	Subscribe() (<-chan models.ConversationEvent, func())
	Close()
}

// IDGenerator issues local message ids.
type IDGenerator interface {
	Generate() string
}

// Refresher is anything a RefreshJob can drive.
type Refresher interface {
	Refresh(ctx context.Context) error
}
