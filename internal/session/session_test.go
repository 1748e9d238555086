package session

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-0123456789"

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	token, expiresAt, err := iss.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	userID, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("unexpected subject: %s", userID)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	iss, err := NewIssuer(testSecret, WithLifetime(time.Hour), WithClock(func() time.Time { return current }))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	token, _, err := iss.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	current = current.Add(time.Hour + time.Minute)
	if _, err := iss.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after lifetime elapsed, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := iss.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	other, err := NewIssuer("a-different-secret-value")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	token, _, err := other.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := iss.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("   "); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
