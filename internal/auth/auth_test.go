package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", "event-ledger", time.Hour)
	p := Principal{AdminID: 42, Username: "desk", Permissions: []string{"billing", "payments"}}

	token, expiresAt, err := m.Issue(p)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected expiry in the future, got %s", expiresAt)
	}

	got, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.AdminID != 42 || got.Username != "desk" || got.IsSuper || len(got.Permissions) != 2 {
		t.Fatalf("unexpected principal %+v", got)
	}
}

func TestParseRejects(t *testing.T) {
	m := NewTokenManager("secret", "event-ledger", time.Hour)
	token, _, err := m.Issue(Principal{AdminID: 1, Username: "a"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	expired := NewTokenManager("secret", "event-ledger", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	oldToken, _, err := expired.Issue(Principal{AdminID: 1, Username: "a"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name    string
		manager *TokenManager
		token   string
	}{
		{"wrong secret", NewTokenManager("other", "event-ledger", time.Hour), token},
		{"wrong issuer", NewTokenManager("secret", "someone-else", time.Hour), token},
		{"expired", m, oldToken},
		{"garbage", m, "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.manager.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestPrincipalCan(t *testing.T) {
	p := Principal{Permissions: []string{"billing"}}
	if !p.Can("billing") || p.Can("payments") {
		t.Fatalf("unexpected permission check for %+v", p)
	}
	super := Principal{IsSuper: true}
	if !super.Can("payments") {
		t.Fatal("expected super admin to hold every permission")
	}
}

func TestActor(t *testing.T) {
	if got := Actor(context.Background()); got != "system" {
		t.Fatalf("expected system actor, got %q", got)
	}
	ctx := WithPrincipal(context.Background(), Principal{Username: "desk"})
	if got := Actor(ctx); got != "desk" {
		t.Fatalf("expected desk, got %q", got)
	}
}

func TestPasswordHash(t *testing.T) {
	hashed, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("s3cret", hashed) || CheckPassword("wrong", hashed) {
		t.Fatal("password check mismatch")
	}
}
