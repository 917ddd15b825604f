package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"artcreator/internal/middleware"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("1.2.3", "today", "abc123")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "artctl: 1.2.3") || !strings.Contains(out, "gitCommit: abc123") {
		t.Fatalf("output = %q", out)
	}
}

func TestTokenMintsVerifiableJWT(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("AUTH_JWT_AUDIENCE", "")
	t.Setenv("AUTH_JWT_ISSUER", "")
	userID := "0b7c6f4e-4a7e-4b8e-9d2a-1f0e6c3d2b1a"

	out, err := execute(t, "token", "--user", userID, "--email", "a@example.com")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	claims, err := middleware.VerifyJWT("cli-secret", "authenticated", "", strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != userID || claims.Email != "a@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenRejectsNonUUID(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	if _, err := execute(t, "token", "--user", "bob"); err == nil {
		t.Fatal("expected error for non-UUID user")
	}
}

func TestCreditsGrantValidatesAmount(t *testing.T) {
	_, err := execute(t, "credits", "grant", "some-user")
	if err == nil || !strings.Contains(err.Error(), "--amount") {
		t.Fatalf("err = %v", err)
	}
}

func TestResolveProfileArguments(t *testing.T) {
	s := &session{}
	if _, err := s.resolveProfile(context.Background(), nil, ""); err == nil {
		t.Fatal("expected error without user ID or email")
	}
	if _, err := s.resolveProfile(context.Background(), []string{"id"}, "a@example.com"); err == nil {
		t.Fatal("expected error with both user ID and email")
	}
}
