package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory implementation of AccountStorage and
// VerificationStorage, intended for tests and local development. All
// methods are safe for concurrent use.
type MemoryStorage struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*memoryAccount
	byEmail  map[string]uuid.UUID
	tokens   map[string]*VerificationToken
}

type memoryAccount struct {
	account      Account
	passwordHash []byte
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		accounts: make(map[uuid.UUID]*memoryAccount),
		byEmail:  make(map[string]uuid.UUID),
		tokens:   make(map[string]*VerificationToken),
	}
}

func (s *MemoryStorage) CreateAccount(_ context.Context, account *Account, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[account.Email]; exists {
		return ErrEmailAlreadyExists
	}

	stored := *account
	s.accounts[account.ID] = &memoryAccount{
		account:      stored,
		passwordHash: append([]byte(nil), passwordHash...),
	}
	s.byEmail[account.Email] = account.ID
	return nil
}

func (s *MemoryStorage) GetAccountByID(_ context.Context, id uuid.UUID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	account := stored.account
	return &account, nil
}

func (s *MemoryStorage) GetAccountByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	account := s.accounts[id].account
	return &account, nil
}

func (s *MemoryStorage) GetPasswordHash(_ context.Context, id uuid.UUID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return append([]byte(nil), stored.passwordHash...), nil
}

func (s *MemoryStorage) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	stored.passwordHash = append([]byte(nil), hash...)
	return nil
}

func (s *MemoryStorage) SetAccountVerified(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	stored.account.IsVerified = true
	return nil
}

func (s *MemoryStorage) CreateToken(_ context.Context, token *VerificationToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *token
	s.tokens[token.Token] = &stored
	return nil
}

func (s *MemoryStorage) GetTokenByValue(_ context.Context, value string) (*VerificationToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[value]
	if !ok || token.IsExpired() {
		return nil, ErrTokenNotFound
	}
	result := *token
	return &result, nil
}

func (s *MemoryStorage) GetTokenByAccount(_ context.Context, accountID uuid.UUID, purpose Purpose) (*VerificationToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *VerificationToken
	for _, token := range s.tokens {
		if token.AccountID != accountID || token.Purpose != purpose || token.IsExpired() {
			continue
		}
		if latest == nil || token.CreatedAt.After(latest.CreatedAt) {
			latest = token
		}
	}
	if latest == nil {
		return nil, ErrTokenNotFound
	}
	result := *latest
	return &result, nil
}

func (s *MemoryStorage) DeleteToken(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, value)
	return nil
}

func (s *MemoryStorage) ReplaceToken(_ context.Context, token *VerificationToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for value, existing := range s.tokens {
		if existing.AccountID == token.AccountID && existing.Purpose == token.Purpose {
			delete(s.tokens, value)
		}
	}
	stored := *token
	s.tokens[token.Token] = &stored
	return nil
}

func (s *MemoryStorage) DeleteExpiredTokens(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for value, token := range s.tokens {
		if token.IsExpired() {
			delete(s.tokens, value)
		}
	}
	return nil
}
