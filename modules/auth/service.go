package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/credkit/pkg/email"
	"github.com/dmitrymomot/credkit/pkg/jwt"
	"github.com/dmitrymomot/credkit/pkg/logger"
	"github.com/dmitrymomot/credkit/pkg/sanitizer"
	"github.com/dmitrymomot/credkit/pkg/validator"
)

// Config holds the module settings that end up in outbound emails: the
// public base URL challenge links point at and the product name used in
// subjects and bodies.
type Config struct {
	AppURL  string `env:"APP_URL,required"`
	AppName string `env:"APP_NAME" envDefault:"TaskHub"`
}

// Service orchestrates the credential lifecycle: registration, login,
// email verification, and password recovery. It owns no long-lived state;
// everything lives in the two storage abstractions.
type Service struct {
	cfg      Config
	accounts AccountStorage
	tokens   VerificationStorage
	codec    *jwt.Service
	mailer   email.EmailSender
	logger   *slog.Logger

	bcryptCost       int
	challengeTTL     time.Duration
	sessionTTL       time.Duration
	passwordStrength validator.PasswordStrengthConfig
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.logger = log }
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// WithChallengeTokenTTL sets the lifetime of verification and reset tokens.
func WithChallengeTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.challengeTTL = ttl }
}

// WithSessionTokenTTL sets the lifetime of session tokens.
func WithSessionTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.sessionTTL = ttl }
}

// WithPasswordStrength sets custom password strength requirements.
func WithPasswordStrength(cfg validator.PasswordStrengthConfig) Option {
	return func(s *Service) { s.passwordStrength = cfg }
}

// NewService creates the credential lifecycle service. Challenge tokens
// default to a one hour lifetime, sessions to one day.
func NewService(cfg Config, accounts AccountStorage, tokens VerificationStorage, codec *jwt.Service, mailer email.EmailSender, opts ...Option) *Service {
	s := &Service{
		cfg:              cfg,
		accounts:         accounts,
		tokens:           tokens,
		codec:            codec,
		mailer:           mailer,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		bcryptCost:       bcrypt.DefaultCost,
		challengeTTL:     time.Hour,
		sessionTTL:       24 * time.Hour,
		passwordStrength: validator.DefaultPasswordStrength(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RegisterParams carries the registration input. ConfirmPassword is
// optional; when supplied it must match Password.
type RegisterParams struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

// Register creates a pending account and emails a verification link. The
// account is persisted before the email is sent; when delivery fails the
// pending account remains and ErrNotificationFailed is returned, so a later
// login can resend the challenge.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Account, error) {
	params.Email = sanitizer.NormalizeEmail(params.Email)

	if err := validator.Apply(
		validator.Required("name", params.Name),
		validator.ValidEmail("email", params.Email),
		validator.StrongPassword("password", params.Password, s.passwordStrength),
		validator.NotCommonPassword("password", params.Password),
		validator.PasswordsMatch("confirm_password", params.Password, params.ConfirmPassword),
	); err != nil {
		return nil, err
	}

	if _, err := s.accounts.GetAccountByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &Account{
		ID:        uuid.New(),
		Name:      params.Name,
		Email:     params.Email,
		CreatedAt: time.Now(),
	}

	if err := s.accounts.CreateAccount(ctx, account, hash); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	raw, err := s.issueChallenge(ctx, account.ID, PurposeEmailVerification, false)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendEmail(ctx, verificationEmail(s.cfg, account.Name, account.Email, raw)); err != nil {
		s.logger.Error("verification email delivery failed",
			logger.AccountID(account.ID.String()),
			logger.Email(sanitizer.MaskEmail(account.Email)),
			logger.Error(err),
			logger.Component("auth"),
		)
		return nil, ErrNotificationFailed
	}

	return account, nil
}

// Login authenticates an account by email and password and returns a
// session. An unknown email and a wrong password fail identically with
// ErrInvalidCredentials so the response never reveals whether the account
// exists. Unverified accounts never log in; if their challenge has lapsed a
// fresh one is issued and mailed before ErrEmailNotVerified is returned.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*Session, error) {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if err := validator.Apply(
		validator.ValidEmail("email", emailAddr),
		validator.Required("password", password),
	); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetAccountByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	hash, err := s.accounts.GetPasswordHash(ctx, account.ID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load password hash: %w", err)
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if !account.IsVerified {
		if err := s.resendVerification(ctx, account); err != nil {
			return nil, err
		}
		return nil, ErrEmailNotVerified
	}

	return s.newSession(account)
}

// resendVerification issues a fresh email-verification challenge when the
// account has no live one. The stale-or-missing check and the
// delete-create are collapsed into a single conditional ReplaceToken write
// so two concurrent logins cannot accumulate outstanding tokens.
func (s *Service) resendVerification(ctx context.Context, account *Account) error {
	if _, err := s.tokens.GetTokenByAccount(ctx, account.ID, PurposeEmailVerification); err == nil {
		// A live challenge is already in the user's inbox.
		return nil
	} else if !errors.Is(err, ErrTokenNotFound) {
		return fmt.Errorf("failed to check outstanding token: %w", err)
	}

	raw, err := s.issueChallenge(ctx, account.ID, PurposeEmailVerification, true)
	if err != nil {
		return err
	}

	if err := s.mailer.SendEmail(ctx, verificationEmail(s.cfg, account.Name, account.Email, raw)); err != nil {
		s.logger.Error("verification email delivery failed",
			logger.AccountID(account.ID.String()),
			logger.Email(sanitizer.MaskEmail(account.Email)),
			logger.Error(err),
			logger.Component("auth"),
		)
		return ErrNotificationFailed
	}

	return nil
}

// VerifyEmail consumes an email-verification challenge: it validates the
// signed token, requires the matching persisted record (single-use), flips
// the account to verified, and returns a fresh session.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) (*Session, error) {
	accountID, err := s.consumeClaims(rawToken, PurposeEmailVerification)
	if err != nil {
		return nil, err
	}

	record, err := s.tokens.GetTokenByValue(ctx, rawToken)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			// Absent means consumed, superseded, expired, or never issued.
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}
	if record.AccountID != accountID || record.Purpose != PurposeEmailVerification {
		return nil, ErrTokenInvalid
	}

	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if account.IsVerified {
		return nil, ErrAlreadyVerified
	}

	if err := s.accounts.SetAccountVerified(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("failed to mark account verified: %w", err)
	}
	account.IsVerified = true

	// Replay of the same link now fails with ErrAlreadyVerified even if
	// this delete does not land, so a failure here is logged, not fatal.
	if err := s.tokens.DeleteToken(ctx, rawToken); err != nil {
		s.logger.Error("failed to delete consumed verification token",
			logger.AccountID(account.ID.String()),
			logger.Error(err),
			logger.Component("auth"),
		)
	}

	return s.newSession(account)
}

// RequestPasswordReset issues a password-reset challenge and emails the
// reset link. Unlike login, this flow reports whether the email is
// registered: an unknown address fails with ErrAccountNotFound.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if err := validator.Apply(validator.ValidEmail("email", emailAddr)); err != nil {
		return err
	}

	account, err := s.accounts.GetAccountByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	// Reset requests do not supersede each other; any outstanding reset
	// token stays valid until consumed or expired.
	raw, err := s.issueChallenge(ctx, account.ID, PurposePasswordReset, false)
	if err != nil {
		return err
	}

	if err := s.mailer.SendEmail(ctx, passwordResetEmail(s.cfg, account.Name, account.Email, raw)); err != nil {
		s.logger.Error("password reset email delivery failed",
			logger.AccountID(account.ID.String()),
			logger.Email(sanitizer.MaskEmail(account.Email)),
			logger.Error(err),
			logger.Component("auth"),
		)
		return ErrNotificationFailed
	}

	return nil
}

// ConfirmPasswordReset overwrites the account's password hash after
// validating a reset challenge. The persisted record is required and is
// deleted before the hash is written: if the update fails the link is
// already burned and the user must request a new one, which fails closed
// rather than leaving a replayable reset link.
func (s *Service) ConfirmPasswordReset(ctx context.Context, rawToken, newPassword string) error {
	if err := validator.Apply(
		validator.StrongPassword("password", newPassword, s.passwordStrength),
		validator.NotCommonPassword("password", newPassword),
	); err != nil {
		return err
	}

	accountID, err := s.consumeClaims(rawToken, PurposePasswordReset)
	if err != nil {
		return err
	}

	record, err := s.tokens.GetTokenByValue(ctx, rawToken)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}
	if record.AccountID != accountID || record.Purpose != PurposePasswordReset {
		return ErrTokenInvalid
	}

	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.tokens.DeleteToken(ctx, rawToken); err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	if err := s.accounts.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// consumeClaims validates the signed token and its purpose tag, returning
// the subject account id. It never touches storage.
func (s *Service) consumeClaims(rawToken string, purpose Purpose) (uuid.UUID, error) {
	claims, err := s.codec.Parse(rawToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, ErrTokenInvalid
	}

	if Purpose(claims.Purpose) != purpose {
		return uuid.Nil, ErrTokenInvalid
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}

	return accountID, nil
}

// issueChallenge signs a purpose-tagged token and mirrors it into the
// verification record store. With replace set, any outstanding record for
// the same owner and purpose is atomically superseded.
func (s *Service) issueChallenge(ctx context.Context, accountID uuid.UUID, purpose Purpose, replace bool) (string, error) {
	raw, err := s.codec.Issue(accountID.String(), string(purpose), s.challengeTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign challenge token: %w", err)
	}

	record := &VerificationToken{
		ID:        uuid.New(),
		AccountID: accountID,
		Token:     raw,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(s.challengeTTL),
		CreatedAt: time.Now(),
	}

	if replace {
		err = s.tokens.ReplaceToken(ctx, record)
	} else {
		err = s.tokens.CreateToken(ctx, record)
	}
	if err != nil {
		return "", fmt.Errorf("failed to persist challenge token: %w", err)
	}

	return raw, nil
}

func (s *Service) newSession(account *Account) (*Session, error) {
	token, err := s.codec.Issue(account.ID.String(), "", s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return &Session{Token: token, Account: account}, nil
}
