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

func TestPrincipalCtxKey(t *testing.T) {
	if PrincipalCtxKey.String() != "principal" {
		t.Errorf("expected 'principal', got '%s'", PrincipalCtxKey.String())
	}
}

func TestGetPrincipalFromContext_Success(t *testing.T) {
	ctx := WithPrincipal(context.Background(), "installation-1")

	principal, ok := GetPrincipalFromContext(ctx)

	if !ok {
		t.Fatal("expected ok=true, got false")
	}
	if principal != "installation-1" {
		t.Errorf("expected installation-1, got %s", principal)
	}
}

func TestGetPrincipalFromContext_Missing(t *testing.T) {
	principal, ok := GetPrincipalFromContext(context.Background())

	if ok {
		t.Fatal("expected ok=false, got true")
	}
	if principal != "" {
		t.Errorf("expected empty principal, got %s", principal)
	}
}

func TestGetPrincipalFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), PrincipalCtxKey, 42)

	if _, ok := GetPrincipalFromContext(ctx); ok {
		t.Fatal("expected ok=false for non-string value")
	}
}

func TestGetPrincipalFromContext_Empty(t *testing.T) {
	if _, ok := GetPrincipalFromContext(WithPrincipal(context.Background(), "")); ok {
		t.Fatal("expected ok=false for empty principal")
	}
}
