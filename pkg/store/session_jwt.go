package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	defaultJWTIssuer   = "studyhub"
	defaultJWTAudience = "studyhub-api"
	defaultSessionTTL  = 24 * time.Hour
)

var jwtLeeway = 30 * time.Second

// JWTSessionStore issues and validates HS256 session tokens.
type JWTSessionStore struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTSessionStore builds a session store signing with the given secret.
func NewJWTSessionStore(secret string, ttl time.Duration) (*JWTSessionStore, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("session secret required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &JWTSessionStore{secret: []byte(secret), ttl: ttl}, nil
}

// NewSession issues a signed token whose subject is the user id.
func (s *JWTSessionStore) NewSession(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("user id required")
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    defaultJWTIssuer,
		Audience:  jwt.ClaimStrings{defaultJWTAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// UserIDFromToken validates the token and returns its subject.
// Invalid or expired tokens report ok=false, not an error.
func (s *JWTSessionStore) UserIDFromToken(token string) (string, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false, nil
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(defaultJWTIssuer),
		jwt.WithAudience(defaultJWTAudience),
		jwt.WithLeeway(jwtLeeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return "", false, nil
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || strings.TrimSpace(claims.Subject) == "" {
		return "", false, nil
	}
	return claims.Subject, true, nil
}
