// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "strings"

const (
	// SessionKey holds the serialised session.
	SessionKey = "session"

	// ConversationKeyPrefix prefixes every cached conversation.
	ConversationKeyPrefix = "conversation:"
)

// ConversationKey returns the key of the cached message list of a
// conversation.
func ConversationKey(conversationID string) string {
	return ConversationKeyPrefix + conversationID
}

// ConversationIDFromKey is the inverse of [ConversationKey]. ok is false for
// keys outside the conversation family.
func ConversationIDFromKey(key string) (string, bool) {
	id, ok := strings.CutPrefix(key, ConversationKeyPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
