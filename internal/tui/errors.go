// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/go-konvo/internal/service"
)

var userMessages = []struct {
	err error
	msg string
}{
	{service.ErrInvalidPhone, "Phone number is required"},
	{service.ErrChallengeDeliveryFailed, "The code could not be sent, try again"},
	{service.ErrNoActiveChallenge, "Request a new code first (ctrl+r)"},
	{service.ErrChallengeExpired, "The code has expired, request a new one (ctrl+r)"},
	{service.ErrInvalidCode, "Wrong code, request a new one (ctrl+r)"},
	{service.ErrVerificationFailed, "Verification failed, request a new code (ctrl+r)"},
	{service.ErrInvalidProfile, "First name and a username without spaces are required"},
	{service.ErrProfileSaveFailed, "Profile kept on this device but not saved, try again"},
	{service.ErrSessionExpired, "Session expired, sign in again"},
	{service.ErrNotAuthenticated, "Not signed in"},
	{service.ErrSessionPersistFailed, "Session could not be stored on this device"},
	{service.ErrEmptyContent, "Message is empty"},
	{service.ErrSendFailed, "Not delivered, select it and press ctrl+r to retry"},
	{service.ErrSyncUnavailable, "Messages could not be refreshed, showing saved copy"},
	{service.ErrNotRetryable, "Only failed messages can be retried"},
	{service.ErrConversationClosed, "Conversation is closed"},
}

// humanizeError turns a service error into a line for the user.
func humanizeError(err error) string {
	if err == nil {
		return ""
	}

	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}

	return humanizeServerUnavailableError(err)
}

func humanizeServerUnavailableError(err error) string {
	if err == nil {
		return ""
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "No network or the server is unavailable"
	}

	return err.Error()
}
