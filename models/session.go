// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SessionState is the position of the client in the authentication flow.
// The UI routes between onboarding, code entry, profile setup and the main
// screens by this value.
type SessionState string

const (
	// SessionUnauthenticated is the initial state: no challenge, no token.
	SessionUnauthenticated SessionState = "unauthenticated"
	// SessionOtpRequested means a one-time code was requested for a phone
	// handle. The active challenge may already be consumed by a failed
	// verification, in which case a new code has to be requested.
	SessionOtpRequested SessionState = "otp_requested"
	// SessionProfileIncomplete means the token is valid but the identity has
	// not finished profile setup.
	SessionProfileIncomplete SessionState = "profile_incomplete"
	// SessionAuthenticated is the productive state.
	SessionAuthenticated SessionState = "authenticated"
)

// HasToken reports whether a session in this state must carry a token.
func (s SessionState) HasToken() bool {
	return s == SessionAuthenticated || s == SessionProfileIncomplete
}

func (s SessionState) String() string {
	return string(s)
}

// Session is the authenticated identity and credential held by the client.
//
// Token is non-empty if and only if State.HasToken() is true. Every change
// that carries a token is written to the key-value store under the "session"
// key before it becomes visible in memory.
type Session struct {
	IdentityID      string       `json:"identity_id,omitempty"`
	PhoneHandle     string       `json:"phone_handle,omitempty"`
	Token           string       `json:"token,omitempty"`
	ProfileComplete bool         `json:"profile_complete"`
	State           SessionState `json:"state"`
	Identity        *Identity    `json:"identity,omitempty"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// IsValid checks the token/state invariant.
func (s Session) IsValid() bool {
	return (s.Token != "") == s.State.HasToken()
}

// Clone returns a copy that does not share the Identity pointer.
func (s Session) Clone() Session {
	if s.Identity != nil {
		identity := *s.Identity
		s.Identity = &identity
	}
	return s
}

// AuthResult is what the gateway hands back after a successful code
// verification.
type AuthResult struct {
	Token    string   `json:"token"`
	Identity Identity `json:"user"`
}
