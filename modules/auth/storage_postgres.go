package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/credkit/pkg/pg"
)

// PostgresStorage implements AccountStorage and VerificationStorage on a
// pgx connection pool. Token lookups filter on expires_at so a record past
// its expiry reads as absent even before the background sweep evicts it.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a storage backed by the given pool.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) CreateAccount(ctx context.Context, account *Account, passwordHash []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (id, name, email, password_hash, is_verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID, account.Name, account.Email, passwordHash, account.IsVerified, account.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.scanAccount(s.pool.QueryRow(ctx,
		`SELECT id, name, email, is_verified, created_at FROM accounts WHERE id = $1`, id))
}

func (s *PostgresStorage) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	return s.scanAccount(s.pool.QueryRow(ctx,
		`SELECT id, name, email, is_verified, created_at FROM accounts WHERE email = $1`, email))
}

func (s *PostgresStorage) scanAccount(row pgx.Row) (*Account, error) {
	var account Account
	err := row.Scan(&account.ID, &account.Name, &account.Email, &account.IsVerified, &account.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &account, nil
}

func (s *PostgresStorage) GetPasswordHash(ctx context.Context, id uuid.UUID) ([]byte, error) {
	var hash []byte
	err := s.pool.QueryRow(ctx,
		`SELECT password_hash FROM accounts WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load password hash: %w", err)
	}
	return hash, nil
}

func (s *PostgresStorage) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *PostgresStorage) SetAccountVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET is_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark account verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *PostgresStorage) CreateToken(ctx context.Context, token *VerificationToken) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO verification_tokens (id, account_id, token, purpose, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		token.ID, token.AccountID, token.Token, string(token.Purpose), token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert verification token: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetTokenByValue(ctx context.Context, value string) (*VerificationToken, error) {
	return s.scanToken(s.pool.QueryRow(ctx,
		`SELECT id, account_id, token, purpose, expires_at, created_at
		 FROM verification_tokens
		 WHERE token = $1 AND expires_at > now()`, value))
}

func (s *PostgresStorage) GetTokenByAccount(ctx context.Context, accountID uuid.UUID, purpose Purpose) (*VerificationToken, error) {
	return s.scanToken(s.pool.QueryRow(ctx,
		`SELECT id, account_id, token, purpose, expires_at, created_at
		 FROM verification_tokens
		 WHERE account_id = $1 AND purpose = $2 AND expires_at > now()
		 ORDER BY created_at DESC
		 LIMIT 1`, accountID, string(purpose)))
}

func (s *PostgresStorage) scanToken(row pgx.Row) (*VerificationToken, error) {
	var token VerificationToken
	err := row.Scan(&token.ID, &token.AccountID, &token.Token, &token.Purpose, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to scan verification token: %w", err)
	}
	return &token, nil
}

func (s *PostgresStorage) DeleteToken(ctx context.Context, value string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM verification_tokens WHERE token = $1`, value); err != nil {
		return fmt.Errorf("failed to delete verification token: %w", err)
	}
	return nil
}

// ReplaceToken supersedes any outstanding record for the same owner and
// purpose inside a single transaction.
func (s *PostgresStorage) ReplaceToken(ctx context.Context, token *VerificationToken) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx,
		`DELETE FROM verification_tokens WHERE account_id = $1 AND purpose = $2`,
		token.AccountID, string(token.Purpose)); err != nil {
		return fmt.Errorf("failed to delete superseded tokens: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO verification_tokens (id, account_id, token, purpose, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		token.ID, token.AccountID, token.Token, string(token.Purpose), token.ExpiresAt, token.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert replacement token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit token replacement: %w", err)
	}
	return nil
}

func (s *PostgresStorage) DeleteExpiredTokens(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM verification_tokens WHERE expires_at <= now()`); err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return nil
}
