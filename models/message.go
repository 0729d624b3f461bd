// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strings"
	"time"
)

// DeliveryState tracks a message from optimistic insertion to confirmation.
type DeliveryState string

const (
	// DeliveryPending is an optimistic entry waiting for the gateway.
	DeliveryPending DeliveryState = "pending"
	// DeliverySent is a locally originated entry confirmed by the gateway.
	DeliverySent DeliveryState = "sent"
	// DeliveryFailed is a locally originated entry whose retry budget is
	// exhausted. It is kept so the user can retry.
	DeliveryFailed DeliveryState = "failed"
	// DeliveryReceived is an entry created from a remote fetch. It never
	// transitions.
	DeliveryReceived DeliveryState = "received"
)

// Message is one entry of a conversation as the client sees it.
//
// LocalID is assigned at creation and never changes. RemoteID is set once the
// gateway confirmed the message. EffectiveTimestamp is the server time for
// confirmed entries and the local creation time otherwise; it is the ordering
// key of a conversation.
type Message struct {
	LocalID            string        `json:"local_id"`
	RemoteID           string        `json:"remote_id,omitempty"`
	ConversationID     string        `json:"conversation_id"`
	SenderID           string        `json:"sender_id,omitempty"`
	Content            string        `json:"content"`
	CreatedAt          time.Time     `json:"created_at"`
	EffectiveTimestamp time.Time     `json:"effective_timestamp"`
	DeliveryState      DeliveryState `json:"delivery_state"`
}

// IsConfirmed reports whether the gateway assigned an id to the entry.
func (m Message) IsConfirmed() bool {
	return m.RemoteID != ""
}

// IsLocal reports whether the entry originated on this client.
func (m Message) IsLocal() bool {
	return m.DeliveryState != DeliveryReceived
}

// Before is the conversation order: effective timestamp first, then local
// id and remote id lexically so the order is deterministic.
func (m Message) Before(other Message) bool {
	if !m.EffectiveTimestamp.Equal(other.EffectiveTimestamp) {
		return m.EffectiveTimestamp.Before(other.EffectiveTimestamp)
	}
	if c := strings.Compare(m.LocalID, other.LocalID); c != 0 {
		return c < 0
	}
	return m.RemoteID < other.RemoteID
}

// Conversation is the ordered message list of one chat.
type Conversation struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}
