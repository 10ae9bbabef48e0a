package auth

import (
	"time"

	"github.com/google/uuid"
)

// Purpose discriminates what a challenge token may be consumed for. It is
// embedded in the signed token and stored on the persisted record, and both
// copies are checked at every consumption site; a token issued for one flow
// is never accepted by another.
type Purpose string

const (
	// PurposeEmailVerification tags tokens proving ownership of a mailbox.
	PurposeEmailVerification Purpose = "email-verification"
	// PurposePasswordReset tags tokens authorizing a credential overwrite.
	PurposePasswordReset Purpose = "password-reset"
)

// Account is the public projection of a registered user. The password hash
// deliberately does not live on this struct; it is read and written through
// dedicated storage methods so it can never be logged or serialized outward.
type Account struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// VerificationToken is the persisted single-use record backing a challenge
// token. The record owns replay protection: consuming a challenge deletes
// it, and lookups treat records past their expiry as absent.
type VerificationToken struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Token     string
	Purpose   Purpose
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the record's expiry instant has passed.
func (t *VerificationToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// Session bundles a signed session token with the account it belongs to.
type Session struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}
