// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"
)

func TestContextKeyString(t *testing.T) {
	key := contextKey("testKey")
	if key.String() != "testKey" {
		t.Errorf("expected 'testKey', got '%s'", key.String())
	}
}

func TestIdentityIDCtxKey(t *testing.T) {
	if IdentityIDCtxKey.String() != "identityID" {
		t.Errorf("expected 'identityID', got '%s'", IdentityIDCtxKey.String())
	}
}

func TestGetIdentityIDFromContext_Success(t *testing.T) {
	ctx := WithIdentityID(context.Background(), "u-42")

	identityID, ok := GetIdentityIDFromContext(ctx)

	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if identityID != "u-42" {
		t.Errorf("expected u-42, got %s", identityID)
	}
}

func TestGetIdentityIDFromContext_Missing(t *testing.T) {
	identityID, ok := GetIdentityIDFromContext(context.Background())

	if ok {
		t.Fatal("expected ok=false, got true")
	}
	if identityID != "" {
		t.Errorf("expected empty id, got %s", identityID)
	}
}

func TestGetIdentityIDFromContext_WrongTypeOrEmpty(t *testing.T) {
	ctx := context.WithValue(context.Background(), IdentityIDCtxKey, 42)
	if _, ok := GetIdentityIDFromContext(ctx); ok {
		t.Error("expected ok=false for a non-string value")
	}

	ctx = WithIdentityID(context.Background(), "")
	if _, ok := GetIdentityIDFromContext(ctx); ok {
		t.Error("expected ok=false for an empty id")
	}
}

func TestGetIdentityIDFromContext_PlainStringKeyDoesNotCollide(t *testing.T) {
	//nolint:staticcheck // deliberately using a plain string key
	ctx := context.WithValue(context.Background(), "identityID", "u-1")

	if _, ok := GetIdentityIDFromContext(ctx); ok {
		t.Error("expected plain string key not to match the typed key")
	}
}

func TestGetTokenFromContext(t *testing.T) {
	if _, ok := GetTokenFromContext(context.Background()); ok {
		t.Fatal("expected ok=false for empty context")
	}
	if _, ok := GetTokenFromContext(WithToken(context.Background(), "")); ok {
		t.Fatal("expected ok=false for empty token")
	}

	token, ok := GetTokenFromContext(WithToken(context.Background(), "abc"))
	if !ok || token != "abc" {
		t.Errorf("expected abc, got %q (ok=%v)", token, ok)
	}
}
