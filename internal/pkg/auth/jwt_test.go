package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", SessionExp: time.Hour, TokenIssuer: "visitportal"})
}

func TestSessionTokenRoundTrip(t *testing.T) {
	s := newTestService()
	sid := NewSessionID()

	token, expiry, err := s.IssueSessionToken(sid)
	if err != nil {
		t.Fatalf("IssueSessionToken: %v", err)
	}
	if time.Until(expiry) <= 0 {
		t.Fatalf("expiry %s is in the past", expiry)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.SessionID() != sid {
		t.Fatalf("SessionID = %q, want %q", claims.SessionID(), sid)
	}
	if s.ShouldRenew(claims) {
		t.Fatal("fresh token should not need renewal")
	}
}

func TestValidateTokenRejects(t *testing.T) {
	s := newTestService()
	token, _, _ := s.IssueSessionToken(NewSessionID())

	other := NewJWTService(JWTConfig{SecretKey: "other", SessionExp: time.Hour, TokenIssuer: "visitportal"})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("token signed with another key should be rejected")
	}
	if _, err := s.ValidateToken(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("empty token err = %v", err)
	}
	if _, err := s.ValidateToken("not.a.jwt"); err == nil {
		t.Fatal("garbage should be rejected")
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := s.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expired token err = %v, want ErrExpiredToken", err)
	}
}

func TestIssueRejectsNonUUID(t *testing.T) {
	if _, _, err := newTestService().IssueSessionToken("guessable"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("err = %v, want ErrInvalidFormat", err)
	}
}
