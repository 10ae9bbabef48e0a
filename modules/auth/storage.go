package auth

import (
	"context"

	"github.com/google/uuid"
)

// AccountStorage persists accounts and their password hashes. The hash is
// handled through separate methods so it never travels with the Account
// projection.
type AccountStorage interface {
	// CreateAccount stores a new account together with its password hash.
	// Returns ErrEmailAlreadyExists when the email is already taken.
	CreateAccount(ctx context.Context, account *Account, passwordHash []byte) error
	// GetAccountByID returns the account or ErrAccountNotFound.
	GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// GetAccountByEmail returns the account or ErrAccountNotFound.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	// GetPasswordHash returns the stored hash or ErrAccountNotFound.
	GetPasswordHash(ctx context.Context, id uuid.UUID) ([]byte, error)
	// UpdatePasswordHash overwrites the stored hash in place.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error
	// SetAccountVerified flips the verified flag to true.
	SetAccountVerified(ctx context.Context, id uuid.UUID) error
}

// VerificationStorage persists outstanding single-use challenge tokens.
// All lookups must treat records past their expiry as absent, whether or
// not they have been physically evicted yet.
type VerificationStorage interface {
	// CreateToken stores a new outstanding token record.
	CreateToken(ctx context.Context, token *VerificationToken) error
	// GetTokenByValue returns the live record for the raw token value, or
	// ErrTokenNotFound when it is absent, consumed, or expired.
	GetTokenByValue(ctx context.Context, value string) (*VerificationToken, error)
	// GetTokenByAccount returns the outstanding record for the given owner
	// and purpose, or ErrTokenNotFound.
	GetTokenByAccount(ctx context.Context, accountID uuid.UUID, purpose Purpose) (*VerificationToken, error)
	// DeleteToken removes a record by raw token value. Deleting an absent
	// record is not an error.
	DeleteToken(ctx context.Context, value string) error
	// ReplaceToken atomically removes any record for the same owner and
	// purpose (live or stale) and stores the new one. This is the
	// conditional write that keeps concurrent resends from accumulating
	// outstanding tokens.
	ReplaceToken(ctx context.Context, token *VerificationToken) error
	// DeleteExpiredTokens evicts records past their expiry. Backends with
	// native TTL eviction may implement this as a no-op.
	DeleteExpiredTokens(ctx context.Context) error
}
