// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport-layer gateway to the messaging
// backend.
//
// The primary abstraction is [Gateway], which decouples the session manager
// and the conversation sync engine from the underlying protocol. The package
// ships an HTTP/REST implementation ([NewHTTPGateway]) and an in-memory
// development backend ([NewStubGateway]) that is also served over HTTP by
// cmd/devserver.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrUnauthorized] for 401, [ErrUnavailable] for network
// failures and 502/503/504).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-konvo/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/gateway_mock.go -package=mock

// Gateway is the remote API used by the client. Every call may fail; failures
// are reported with the sentinel errors of this package.
type Gateway interface {
	// RequestChallenge asks the backend to deliver a one-time code to phone.
	RequestChallenge(ctx context.Context, phone, displayName string) error

	// VerifyChallenge exchanges a one-time code for a session token.
	// [ErrInvalidCode] means the code was rejected. When the phone handle had
	// no identity yet, the result carries a token together with
	// [ErrIdentityNotFound] and profile setup is required.
	VerifyChallenge(ctx context.Context, phone, code string) (models.AuthResult, error)

	// SaveProfile stores the profile of the identity owning token.
	SaveProfile(ctx context.Context, token string, fields models.ProfileFields) (models.Identity, error)

	// FetchConversation returns the authoritative message list of a
	// conversation. Entries are in the Received state.
	FetchConversation(ctx context.Context, token, conversationID string) ([]models.Message, error)

	// SendMessage delivers content and returns the confirmed message with its
	// remote id and server timestamp.
	SendMessage(ctx context.Context, token, conversationID, content string) (models.Message, error)
}
