// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealKeyInfo = "konvo kv seal v1"

// sealedStore encrypts values before handing them to the wrapped store.
//
// Each value is sealed with XChaCha20-Poly1305 under a key derived from the
// configured secret with HKDF-SHA256. The stored layout is nonce || ciphertext.
// The entry key is bound as associated data, so a value copied under another
// key fails to open.
type sealedStore struct {
	inner KeyValueStore
	aead  cipher.AEAD
}

// NewSealedStore wraps inner so that every value is encrypted at rest.
// Keys stay in clear text because prefix listing must keep working.
func NewSealedStore(inner KeyValueStore, secret string) (KeyValueStore, error) {
	if secret == "" {
		return nil, ErrEmptySealSecret
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(sealKeyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("deriving seal key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating aead: %w", err)
	}

	return &sealedStore{inner: inner, aead: aead}, nil
}

func (s *sealedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize+s.aead.Overhead() {
		return nil, ErrSealedValueCorrupted
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, ErrSealedValueCorrupted
	}
	return plain, nil
}

func (s *sealedStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}

	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	return s.inner.Set(ctx, key, s.aead.Seal(nonce, nonce, value, []byte(key)))
}

func (s *sealedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *sealedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.Keys(ctx, prefix)
}
