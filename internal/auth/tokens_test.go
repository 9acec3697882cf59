package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndRevoke(t *testing.T) {
	tok := NewTokens(0)
	a := tok.Issue("alice")
	b := tok.Issue("alice")
	if a == b {
		t.Fatal("tokens must be unique per sign-in")
	}
	id, err := tok.Identity(a)
	if err != nil || id != "alice" {
		t.Fatalf("identity = %q, %v", id, err)
	}
	tok.Revoke(a)
	if _, err := tok.Identity(a); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("revoked token still valid: %v", err)
	}
	if _, err := tok.Identity(b); err != nil {
		t.Fatalf("other token revoked too: %v", err)
	}
}

func TestExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tok := NewTokens(time.Hour)
	tok.now = func() time.Time { return now }

	old := tok.Issue("alice")
	now = now.Add(45 * time.Minute)
	fresh := tok.Issue("bob")
	now = now.Add(30 * time.Minute)

	if _, err := tok.Identity(old); !errors.Is(err, ErrUnknownToken) {
		t.Fatal("token older than ttl should be rejected")
	}
	if _, err := tok.Identity(fresh); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}
	if n := tok.Sweep(); n != 1 {
		t.Fatalf("sweep removed %d, want 1", n)
	}
}
