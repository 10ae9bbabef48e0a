package auth_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/credkit/modules/auth"
	"github.com/dmitrymomot/credkit/pkg/email"
)

type mockAccountStorage struct {
	mock.Mock
}

func (m *mockAccountStorage) CreateAccount(ctx context.Context, account *auth.Account, passwordHash []byte) error {
	return m.Called(ctx, account, passwordHash).Error(0)
}

func (m *mockAccountStorage) GetAccountByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	args := m.Called(ctx, id)
	if account := args.Get(0); account != nil {
		return account.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountStorage) GetAccountByEmail(ctx context.Context, emailAddr string) (*auth.Account, error) {
	args := m.Called(ctx, emailAddr)
	if account := args.Get(0); account != nil {
		return account.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountStorage) GetPasswordHash(ctx context.Context, id uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, id)
	if hash := args.Get(0); hash != nil {
		return hash.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountStorage) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *mockAccountStorage) SetAccountVerified(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockVerificationStorage struct {
	mock.Mock
}

func (m *mockVerificationStorage) CreateToken(ctx context.Context, token *auth.VerificationToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockVerificationStorage) GetTokenByValue(ctx context.Context, value string) (*auth.VerificationToken, error) {
	args := m.Called(ctx, value)
	if token := args.Get(0); token != nil {
		return token.(*auth.VerificationToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVerificationStorage) GetTokenByAccount(ctx context.Context, accountID uuid.UUID, purpose auth.Purpose) (*auth.VerificationToken, error) {
	args := m.Called(ctx, accountID, purpose)
	if token := args.Get(0); token != nil {
		return token.(*auth.VerificationToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVerificationStorage) DeleteToken(ctx context.Context, value string) error {
	return m.Called(ctx, value).Error(0)
}

func (m *mockVerificationStorage) ReplaceToken(ctx context.Context, token *auth.VerificationToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockVerificationStorage) DeleteExpiredTokens(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	return m.Called(ctx, params).Error(0)
}
