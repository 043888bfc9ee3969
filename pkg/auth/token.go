package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "tracker"

// DefaultTokenTTL is the fixed validity window of issued tokens.
const DefaultTokenTTL = 15 * time.Minute

// Token validation errors. Expired and malformed tokens are distinguished so
// the transport layer can report them with different messages.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("invalid token")
)

// TokenCodec issues and validates signed, time-limited identity tokens.
// Tokens are HS256-signed JWTs carrying the subject (email), issued-at, and
// expiry; validity is a pure function of the signature and the clock, with
// no server-side state. Rotating the secret invalidates every outstanding
// token; this is a documented limitation, not handled gracefully.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenCodecOption adjusts a TokenCodec.
type TokenCodecOption func(*TokenCodec)

// WithTimeSource replaces the codec's clock. Issued tokens and validation
// both consult it.
func WithTimeSource(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec creates a codec signing with secret. A zero ttl selects
// DefaultTokenTTL; a negative ttl is rejected.
func NewTokenCodec(secret []byte, ttl time.Duration, opts ...TokenCodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token ttl must not be negative, got %s", ttl)
	}
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	c := &TokenCodec{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue creates a signed token for subject, valid from now for the
// configured window. No side effects.
func (c *TokenCodec) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}

	now := c.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string, returning its subject.
// Returns ErrTokenExpired for an otherwise well-formed token past its
// expiry, and ErrTokenMalformed for anything structurally invalid or with a
// bad signature.
func (c *TokenCodec) Validate(raw string) (string, error) {
	if raw == "" {
		return "", ErrTokenMalformed
	}

	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenMalformed
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}

// TTL returns the configured validity window.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}
