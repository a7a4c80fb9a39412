package qr

import (
	"testing"
	"time"

	"github.com/parkingly/parkingly-server/internal/clock"
)

func TestIssueTokenShape(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	issuer := NewIssuer(30*time.Minute, clock.NewFake(start))

	token, err := issuer.Issue()
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if len(token.Token) != 12 {
		t.Errorf("token length = %d, want 12", len(token.Token))
	}
	if !token.ExpiresAt.Equal(start.Add(30 * time.Minute)) {
		t.Errorf("ExpiresAt = %v, want %v", token.ExpiresAt, start.Add(30*time.Minute))
	}
}

func TestIssueTokensAreUnique(t *testing.T) {
	issuer := NewIssuer(DefaultTTL, clock.System())

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		token, err := issuer.Issue()
		if err != nil {
			t.Fatalf("Issue() error: %v", err)
		}
		if seen[token.Token] {
			t.Fatalf("duplicate token issued: %s", token.Token)
		}
		seen[token.Token] = true
	}
}

func TestIssuerDefaultsTTL(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	issuer := NewIssuer(0, clock.NewFake(start))

	token, err := issuer.Issue()
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if !token.ExpiresAt.Equal(start.Add(DefaultTTL)) {
		t.Errorf("ExpiresAt = %v, want default TTL %v after start", token.ExpiresAt, DefaultTTL)
	}
}
