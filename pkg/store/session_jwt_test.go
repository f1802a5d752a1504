package store

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func TestSessionRoundTrip(t *testing.T) {
	s, err := NewJWTSessionStore("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	userID, ok, err := s.UserIDFromToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !ok || userID != "user-1" {
		t.Fatalf("got (%q, %v), want (user-1, true)", userID, ok)
	}
}

func TestSessionRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewJWTSessionStore("secret-a", time.Hour)
	verifier, _ := NewJWTSessionStore("secret-b", time.Hour)
	token, err := issuer.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, _ := verifier.UserIDFromToken(token); ok {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestSessionRejectsExpired(t *testing.T) {
	s, _ := NewJWTSessionStore("test-secret", time.Hour)
	now := time.Now().UTC().Add(-2 * time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    defaultJWTIssuer,
		Audience:  jwt.ClaimStrings{defaultJWTAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, ok, _ := s.UserIDFromToken(token); ok {
		t.Fatal("expired token accepted")
	}
}

func TestSessionRejectsGarbage(t *testing.T) {
	s, _ := NewJWTSessionStore("test-secret", time.Hour)
	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, ok, _ := s.UserIDFromToken(token); ok {
			t.Fatalf("token %q accepted", token)
		}
	}
}
