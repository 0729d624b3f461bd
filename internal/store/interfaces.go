// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store provides the persistent key-value store of the client.
//
// Values are opaque byte slices addressed by string keys. The client uses two
// key families: [SessionKey] owned by the session manager and
// "conversation:<id>" (see [ConversationKey]) owned by the conversation sync
// engine handling that conversation. Each key has a single writing owner, so
// the store itself needs no cross-key coordination.
package store

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/kv_store_mock.go -package=mock

// KeyValueStore is the persistence contract shared by all client components.
type KeyValueStore interface {
	// Get returns the value stored under key, or [ErrKeyNotFound].
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists stored keys starting with prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ErrorClassificator decides whether a failed database operation may be
// retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
