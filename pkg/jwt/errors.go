package jwt

import "errors"

var (
	// ErrInvalidToken is returned for malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token's embedded expiry has passed.
	ErrExpiredToken = errors.New("token expired")
	// ErrUnexpectedSigningMethod is returned when a token was signed with
	// anything other than HMAC.
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
	// ErrSigningKeyTooShort is returned at construction for keys under MinKeyLength bytes.
	ErrSigningKeyTooShort = errors.New("signing key too short")
)
