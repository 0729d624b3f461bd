// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// ChallengeRequest is the body of POST /api/auth/request-otp.
type ChallengeRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Name        string `json:"name"`
}

// VerifyRequest is the body of POST /api/auth/verify-otp.
type VerifyRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Otp         string `json:"otp"`
}

// VerifyResponse is returned by POST /api/auth/verify-otp. NewUser is set
// when the phone handle had no identity before this verification.
type VerifyResponse struct {
	Token   string   `json:"token"`
	User    Identity `json:"user"`
	NewUser bool     `json:"newUser"`
}

// SendMessageRequest is the body of POST /api/chat/send.
type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}

// RemoteMessage is a message as the backend serialises it.
type RemoteMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToMessage converts a backend message into a client entry. Entries that
// come from a fetch use the remote id as their local id, so converting the
// same remote message twice gives the same entry.
func (r RemoteMessage) ToMessage(state DeliveryState) Message {
	return Message{
		LocalID:            r.ID,
		RemoteID:           r.ID,
		ConversationID:     r.ConversationID,
		SenderID:           r.SenderID,
		Content:            r.Content,
		CreatedAt:          r.CreatedAt,
		EffectiveTimestamp: r.CreatedAt,
		DeliveryState:      state,
	}
}

// NewRemoteMessage is the inverse of [RemoteMessage.ToMessage], used by the
// development server to serialise stub messages.
func NewRemoteMessage(m Message) RemoteMessage {
	id := m.RemoteID
	if id == "" {
		id = m.LocalID
	}
	return RemoteMessage{
		ID:             id,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
