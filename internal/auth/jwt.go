// Package auth provides password hashing, session tokens and the HTTP
// middleware that enforces them.
//
// SESSION FLOW:
//  1. POST /api/auth/signin → AuthService writes the single session slot
//  2. The handler issues a JWT for that session and sets it in an HttpOnly cookie
//  3. On later API calls, RequireSession validates the JWT and compares it
//     with the persisted slot
//  4. Logout deletes the slot, so every token issued for it stops working
//     even before it expires
//
// The token alone is not enough: signing in again overwrites the slot with a
// new loggedInAt, and older tokens no longer match it.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"sub":"userID","lat":"2025-01-02T03:04:05Z","exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const issuer = "bonvan"

// DefaultTokenTTL is used when the configured lifetime is zero.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Identity is what a valid token says about its holder.
type Identity struct {
	UserID     string
	LoggedInAt string // copy of AuthSession.LoggedInAt
	TokenID    string
}

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: BONVAN_JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL reports the lifetime of issued tokens. The handler uses it as the
// cookie MaxAge.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload: "sub" holds the user id, "lat" the session's
// loggedInAt.
type claims struct {
	LoggedInAt string `json:"lat"`
	jwt.RegisteredClaims
}

// Generate signs a token for the session identified by userID and loggedInAt.
func (s *TokenService) Generate(userID, loggedInAt string) (string, error) {
	return s.GenerateWithDuration(userID, loggedInAt, s.ttl)
}

// GenerateWithDuration signs a token with a custom expiry duration.
// Used in tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID, loggedInAt string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		LoggedInAt: loggedInAt,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches "bonvan"
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Validate(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return &Identity{
		UserID:     c.Subject,
		LoggedInAt: c.LoggedInAt,
		TokenID:    c.ID,
	}, nil
}
