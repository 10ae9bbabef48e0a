package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("nil on success", func(t *testing.T) {
		t.Parallel()

		err := validator.Apply(
			validator.Required("name", "Alice"),
			validator.ValidEmail("email", "alice@example.com"),
		)
		assert.NoError(t, err)
	})

	t.Run("accumulates all failures", func(t *testing.T) {
		t.Parallel()

		err := validator.Apply(
			validator.Required("name", "  "),
			validator.ValidEmail("email", "nope"),
		)
		require.Error(t, err)

		verrs := validator.ExtractValidationErrors(err)
		require.Len(t, verrs, 2)
		assert.True(t, verrs.Has("name"))
		assert.True(t, verrs.Has("email"))
		assert.Equal(t, []string{"name", "email"}, verrs.Fields())
	})

	t.Run("extract returns nil for unrelated errors", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, validator.ExtractValidationErrors(assert.AnError))
		assert.False(t, validator.IsValidationError(assert.AnError))
		assert.Nil(t, validator.ExtractValidationErrors(nil))
	})
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{
		"alice@example.com",
		"a.b+tag@sub.example.co",
	}
	invalid := []string{
		"",
		"plain",
		"@example.com",
		"alice@",
		"alice@localhost",
		"Alice Name <alice@example.com>",
	}

	for _, email := range valid {
		assert.True(t, validator.ValidEmail("email", email).Check(), email)
	}
	for _, email := range invalid {
		assert.False(t, validator.ValidEmail("email", email).Check(), email)
	}
}

func TestStrongPassword(t *testing.T) {
	t.Parallel()

	cfg := validator.DefaultPasswordStrength()

	assert.True(t, validator.StrongPassword("password", "secret1", cfg).Check())
	assert.False(t, validator.StrongPassword("password", "short", cfg).Check())

	strict := validator.PasswordStrengthConfig{MinLength: 8, MaxLength: 64, MinCharClasses: 3}
	assert.True(t, validator.StrongPassword("password", "Secure42x", strict).Check())
	assert.False(t, validator.StrongPassword("password", "lowercaseonly", strict).Check())
}

func TestNotCommonPassword(t *testing.T) {
	t.Parallel()

	assert.False(t, validator.NotCommonPassword("password", "Password123").Check())
	assert.False(t, validator.NotCommonPassword("password", "qwerty").Check())
	assert.True(t, validator.NotCommonPassword("password", "xkcd-horse-staple").Check())
}

func TestPasswordsMatch(t *testing.T) {
	t.Parallel()

	assert.True(t, validator.PasswordsMatch("confirm_password", "secret1", "secret1").Check())
	assert.True(t, validator.PasswordsMatch("confirm_password", "secret1", "").Check())
	assert.False(t, validator.PasswordsMatch("confirm_password", "secret1", "secret2").Check())
}
