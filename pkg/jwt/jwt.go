package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinKeyLength enforces a floor for HMAC signing keys. Shorter keys make
// brute-forcing the signature feasible.
const MinKeyLength = 32

// Claims is the payload carried by every token the service issues. Subject
// holds the account id. Purpose is set for challenge tokens (email
// verification, password reset) and empty for session tokens; consumers must
// check it before acting on a token.
type Claims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose,omitempty"`
}

// Service issues and validates HS256-signed tokens. The signing key is
// provided at construction; there is no ambient or global key state.
type Service struct {
	signingKey []byte
}

// New creates a token service with the provided signing key.
func New(signingKey []byte) (*Service, error) {
	if len(signingKey) < MinKeyLength {
		return nil, ErrSigningKeyTooShort
	}
	return &Service{signingKey: signingKey}, nil
}

// MustNew creates a token service and panics on an unusable key. Follows the
// fail-fast initialization pattern: a service with a weak key must not start.
func MustNew(signingKey []byte) *Service {
	s, err := New(signingKey)
	if err != nil {
		panic(err)
	}
	return s
}

// Issue signs a token for the given subject with an absolute expiry of
// now+ttl. An empty purpose produces a plain session token.
func (s *Service) Issue(subject, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: purpose,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// Parse verifies the token signature and temporal claims and returns the
// decoded claims. Validation is pure: it authenticates only what the token
// itself asserts. Single-use and purpose enforcement belong to the caller.
func (s *Service) Parse(raw string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnexpectedSigningMethod
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
