package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/credkit/modules/auth"
	"github.com/dmitrymomot/credkit/pkg/email"
	"github.com/dmitrymomot/credkit/pkg/jwt"
)

var errStorageDown = errors.New("storage down")

func newMockedService(t *testing.T, accounts *mockAccountStorage, tokens *mockVerificationStorage, mailer *mockEmailSender) *auth.Service {
	t.Helper()
	codec, err := jwt.New(testSigningKey)
	require.NoError(t, err)
	cfg := auth.Config{AppURL: "https://app.example.com", AppName: "TaskHub"}
	return auth.NewService(cfg, accounts, tokens, codec, mailer)
}

func TestServiceStorageFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("register surfaces wrapped error when token persist fails", func(t *testing.T) {
		t.Parallel()
		accounts := &mockAccountStorage{}
		tokens := &mockVerificationStorage{}
		mailer := &mockEmailSender{}
		svc := newMockedService(t, accounts, tokens, mailer)

		accounts.On("GetAccountByEmail", ctx, "john@example.com").Return(nil, auth.ErrAccountNotFound)
		accounts.On("CreateAccount", ctx, mock.Anything, mock.Anything).Return(nil)
		tokens.On("CreateToken", ctx, mock.Anything).Return(errStorageDown)

		_, err := svc.Register(ctx, auth.RegisterParams{
			Name:     "John Doe",
			Email:    "john@example.com",
			Password: "sup3rSecret",
		})
		assert.ErrorIs(t, err, errStorageDown)
		mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("register does not leak lookup failures as conflicts", func(t *testing.T) {
		t.Parallel()
		accounts := &mockAccountStorage{}
		svc := newMockedService(t, accounts, &mockVerificationStorage{}, &mockEmailSender{})

		accounts.On("GetAccountByEmail", ctx, "john@example.com").Return(nil, errStorageDown)

		_, err := svc.Register(ctx, auth.RegisterParams{
			Name:     "John Doe",
			Email:    "john@example.com",
			Password: "sup3rSecret",
		})
		assert.ErrorIs(t, err, errStorageDown)
		assert.NotErrorIs(t, err, auth.ErrEmailAlreadyExists)
	})

	t.Run("login surfaces hash lookup failure", func(t *testing.T) {
		t.Parallel()
		accounts := &mockAccountStorage{}
		svc := newMockedService(t, accounts, &mockVerificationStorage{}, &mockEmailSender{})

		account := &auth.Account{ID: uuid.New(), Email: "john@example.com", IsVerified: true}
		accounts.On("GetAccountByEmail", ctx, "john@example.com").Return(account, nil)
		accounts.On("GetPasswordHash", ctx, account.ID).Return(nil, errStorageDown)

		_, err := svc.Login(ctx, "john@example.com", "sup3rSecret")
		assert.ErrorIs(t, err, errStorageDown)
		assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("resend uses replace write for the fresh challenge", func(t *testing.T) {
		t.Parallel()
		accounts := &mockAccountStorage{}
		tokens := &mockVerificationStorage{}
		mailer := &mockEmailSender{}
		svc := newMockedService(t, accounts, tokens, mailer)

		hash, err := bcrypt.GenerateFromPassword([]byte("sup3rSecret"), bcrypt.MinCost)
		require.NoError(t, err)
		account := &auth.Account{ID: uuid.New(), Name: "John", Email: "john@example.com"}

		accounts.On("GetAccountByEmail", ctx, "john@example.com").Return(account, nil)
		accounts.On("GetPasswordHash", ctx, account.ID).Return(hash, nil)
		tokens.On("GetTokenByAccount", ctx, account.ID, auth.PurposeEmailVerification).Return(nil, auth.ErrTokenNotFound)
		tokens.On("ReplaceToken", ctx, mock.MatchedBy(func(token *auth.VerificationToken) bool {
			return token.AccountID == account.ID && token.Purpose == auth.PurposeEmailVerification
		})).Return(nil)
		mailer.On("SendEmail", ctx, mock.MatchedBy(func(params email.SendEmailParams) bool {
			return params.SendTo == "john@example.com" && params.Tag == "email-verification"
		})).Return(nil)

		_, err = svc.Login(ctx, "john@example.com", "sup3rSecret")
		assert.ErrorIs(t, err, auth.ErrEmailNotVerified)
		tokens.AssertExpectations(t)
		mailer.AssertExpectations(t)
		tokens.AssertNotCalled(t, "CreateToken", mock.Anything, mock.Anything)
	})

	t.Run("reset confirm surfaces consume failure without touching the hash", func(t *testing.T) {
		t.Parallel()
		accounts := &mockAccountStorage{}
		tokens := &mockVerificationStorage{}
		svc := newMockedService(t, accounts, tokens, &mockEmailSender{})

		codec, err := jwt.New(testSigningKey)
		require.NoError(t, err)
		accountID := uuid.New()
		raw, err := codec.Issue(accountID.String(), string(auth.PurposePasswordReset), time.Hour)
		require.NoError(t, err)

		tokens.On("GetTokenByValue", ctx, raw).Return(&auth.VerificationToken{
			ID:        uuid.New(),
			AccountID: accountID,
			Token:     raw,
			Purpose:   auth.PurposePasswordReset,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil)
		accounts.On("GetAccountByID", ctx, accountID).Return(&auth.Account{ID: accountID, IsVerified: true}, nil)
		tokens.On("DeleteToken", ctx, raw).Return(errStorageDown)

		err = svc.ConfirmPasswordReset(ctx, raw, "newSecret42")
		assert.ErrorIs(t, err, errStorageDown)
		accounts.AssertNotCalled(t, "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
	})
}
