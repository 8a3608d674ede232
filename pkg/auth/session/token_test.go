package session

import (
	"testing"
	"time"

	"github.com/weldpoly/quotecart-backend/pkg/config"
)

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret: "test-secret",
		Issuer: "weldpoly-quotecart",
		TTL:    time.Hour,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testConfig()
	sid := NewSessionID()

	token, err := Mint(cfg, time.Now(), sid)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	got, err := Parse(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != sid {
		t.Fatalf("expected session %q, got %q", sid, got)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()
	token, err := Mint(cfg, time.Now(), NewSessionID())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := Parse(other, token); err == nil {
		t.Fatal("expected parse to fail with wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	token, err := Mint(cfg, time.Now().Add(-2*time.Hour), NewSessionID())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := Parse(cfg, token); err == nil {
		t.Fatal("expected parse to fail for expired token")
	}
}

func TestMintValidatesInputs(t *testing.T) {
	cfg := testConfig()
	if _, err := Mint(cfg, time.Now(), "  "); err == nil {
		t.Fatal("expected error for blank session id")
	}
	cfg.Secret = ""
	if _, err := Mint(cfg, time.Now(), NewSessionID()); err == nil {
		t.Fatal("expected error for missing secret")
	}
}
