package access

import (
	"strings"
	"testing"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword("correct horse battery staple", hash) {
		t.Fatal("expected verification to succeed")
	}
	if VerifyPassword("correct horse battery stapl", hash) {
		t.Fatal("expected verification to fail for wrong password")
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ")
	}
	salt, _, ok := strings.Cut(h1, ":")
	if !ok || len(salt) != saltLength*2 {
		t.Fatalf("unexpected stored hash shape: %q", h1)
	}
}

func TestVerifyMalformedHashReturnsFalse(t *testing.T) {
	for _, stored := range []string{"", "no-separator", "zz:zz", "abcd:1234", strings.Repeat("a", 32) + ":" + "notlongenough"} {
		if VerifyPassword("anything", stored) {
			t.Fatalf("malformed hash %q must not verify", stored)
		}
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}
