// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"strings"
)

// ErrProfileFieldsInvalid is returned by [ProfileFields.Validate].
var ErrProfileFieldsInvalid = errors.New("profile fields are invalid")

// Identity is the messaging account behind a verified phone handle.
type Identity struct {
	ID                string `json:"id"`
	PhoneNumber       string `json:"phoneNumber"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Username          string `json:"username,omitempty"`
	Bio               string `json:"bio,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// HasCompleteProfile reports whether profile setup was finished: a first
// name and a username are required before the account is usable.
func (i Identity) HasCompleteProfile() bool {
	return strings.TrimSpace(i.FirstName) != "" && strings.TrimSpace(i.Username) != ""
}

// DisplayName returns the name shown next to messages.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name != "" {
		return name
	}
	if i.Username != "" {
		return i.Username
	}
	return i.PhoneNumber
}

// Apply copies the profile fields onto the identity.
func (i *Identity) Apply(fields ProfileFields) {
	i.FirstName = fields.FirstName
	i.LastName = fields.LastName
	i.Username = fields.Username
	i.Bio = fields.Bio
	i.ProfilePictureURL = fields.ProfilePictureURL
}

// ProfileFields is the editable part of an [Identity], sent to the gateway
// when profile setup is completed.
type ProfileFields struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName,omitempty"`
	Username          string `json:"username"`
	Bio               string `json:"bio,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (f ProfileFields) Normalize() ProfileFields {
	return ProfileFields{
		FirstName:         strings.TrimSpace(f.FirstName),
		LastName:          strings.TrimSpace(f.LastName),
		Username:          strings.TrimSpace(f.Username),
		Bio:               strings.TrimSpace(f.Bio),
		ProfilePictureURL: strings.TrimSpace(f.ProfilePictureURL),
	}
}

// Validate checks the required fields. It is a user-correctable validation
// and never involves the gateway.
func (f ProfileFields) Validate() error {
	f = f.Normalize()
	if f.FirstName == "" {
		return errors.Join(ErrProfileFieldsInvalid, errors.New("first name is required"))
	}
	if f.Username == "" {
		return errors.Join(ErrProfileFieldsInvalid, errors.New("username is required"))
	}
	if strings.ContainsAny(f.Username, " \t\n") {
		return errors.Join(ErrProfileFieldsInvalid, errors.New("username must not contain whitespace"))
	}
	return nil
}
