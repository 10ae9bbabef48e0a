// Package jwt issues and validates the compact signed tokens used across
// the credential lifecycle: short-lived purpose-tagged challenge tokens and
// longer-lived session tokens.
//
// Tokens are HS256 JWTs carrying a subject (account id), an optional purpose
// tag, and an absolute expiry. Validation is stateless; persistence-backed
// single-use enforcement is layered on top by callers:
//
//	svc := jwt.MustNew([]byte(cfg.SigningSecret))
//
//	challenge, err := svc.Issue(accountID, "email-verification", time.Hour)
//	session, err := svc.Issue(accountID, "", 24*time.Hour)
//
//	claims, err := svc.Parse(raw)
//	switch {
//	case errors.Is(err, jwt.ErrExpiredToken):  // past expiry
//	case errors.Is(err, jwt.ErrInvalidToken):  // malformed or tampered
//	}
package jwt
