package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWT errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidFormat = errors.New("invalid token format")
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey   string
	SessionExp  time.Duration
	TokenIssuer string
}

// JWTService signs and verifies browser session cookies
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// Claims defines the session token content. The subject is the browser session id.
type Claims struct {
	jwt.RegisteredClaims
}

// SessionID returns the browser session id carried by the token
func (c *Claims) SessionID() string {
	return c.Subject
}

// NewSessionID returns a fresh random browser session id
func NewSessionID() string {
	return uuid.NewString()
}

// IssueSessionToken signs a token for the session id and returns it with its expiry
func (s *JWTService) IssueSessionToken(sessionID string) (string, time.Time, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", time.Time{}, ErrInvalidFormat
	}
	now := s.now()
	expiry := now.Add(s.config.SessionExp)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   sessionID,
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expiry, nil
}

// ValidateToken validates a token
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, jwt.WithIssuer(s.config.TokenIssuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.SessionID()); err != nil {
		return nil, ErrInvalidFormat
	}
	return claims, nil
}

// ShouldRenew reports whether less than half of the session lifetime is left
func (s *JWTService) ShouldRenew(claims *Claims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Sub(s.now()) < s.config.SessionExp/2
}
