// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// OtpChallenge is a one-time code issued for a phone handle. At most one
// challenge is active per client, and it is consumed by the first
// verification attempt whatever the outcome.
type OtpChallenge struct {
	PhoneHandle       string
	DisplayName       string
	IssuedAt          time.Time
	AttemptsRemaining int
}

// NewOtpChallenge creates a challenge with a single verification attempt.
func NewOtpChallenge(phone, displayName string, issuedAt time.Time) *OtpChallenge {
	return &OtpChallenge{
		PhoneHandle:       phone,
		DisplayName:       displayName,
		IssuedAt:          issuedAt,
		AttemptsRemaining: 1,
	}
}

// Expired reports whether the challenge is older than ttl at now.
// A zero or negative ttl never expires.
func (c *OtpChallenge) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(c.IssuedAt) >= ttl
}

// Consume uses up one attempt and reports whether an attempt was available.
func (c *OtpChallenge) Consume() bool {
	if c.AttemptsRemaining <= 0 {
		return false
	}
	c.AttemptsRemaining--
	return true
}
