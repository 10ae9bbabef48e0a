package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	uppercaseRegex   = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex   = regexp.MustCompile(`[a-z]`)
	digitRegex       = regexp.MustCompile(`[0-9]`)
	specialCharRegex = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?~` + "`" + `]`)

	// Frequently compromised passwords rejected outright regardless of
	// strength configuration.
	commonPasswords = map[string]bool{
		"password":    true,
		"password1":   true,
		"password123": true,
		"123456":      true,
		"1234567890":  true,
		"12345678":    true,
		"123456789":   true,
		"qwerty":      true,
		"qwerty123":   true,
		"qwertyuiop":  true,
		"abc123":      true,
		"letmein":     true,
		"welcome":     true,
		"admin":       true,
		"admin123":    true,
		"iloveyou":    true,
		"dragon":      true,
		"monkey":      true,
		"sunshine":    true,
		"princess":    true,
		"trustno1":    true,
		"secret":      true,
		"master":      true,
		"login":       true,
		"guest":       true,
		"root":        true,
		"test":        true,
		"testing":     true,
	}
)

// PasswordStrengthConfig controls the StrongPassword rule.
type PasswordStrengthConfig struct {
	MinLength      int
	MaxLength      int
	MinCharClasses int // out of upper, lower, digit, special
}

// DefaultPasswordStrength is deliberately permissive: six characters
// minimum, any composition. Tighten it per deployment via
// auth.WithPasswordStrength.
func DefaultPasswordStrength() PasswordStrengthConfig {
	return PasswordStrengthConfig{
		MinLength:      6,
		MaxLength:      128,
		MinCharClasses: 1,
	}
}

// StrongPassword fails when the password is outside the configured length
// bounds or uses fewer character classes than required.
func StrongPassword(field, value string, config PasswordStrengthConfig) Rule {
	return Rule{
		Check: func() bool {
			length := utf8.RuneCountInString(value)
			if length < config.MinLength || (config.MaxLength > 0 && length > config.MaxLength) {
				return false
			}
			return charClasses(value) >= config.MinCharClasses
		},
		Error: ValidationError{
			Field: field,
			Message: fmt.Sprintf("must be %d-%d characters with at least %d character classes",
				config.MinLength, config.MaxLength, config.MinCharClasses),
		},
	}
}

// NotCommonPassword fails for passwords on the compromised-password list.
func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool { return !commonPasswords[strings.ToLower(value)] },
		Error: ValidationError{
			Field:   field,
			Message: "is too common, choose a different password",
		},
	}
}

// PasswordsMatch fails when a password confirmation differs from the
// password. An empty confirmation is accepted; it means the caller did not
// supply one.
func PasswordsMatch(field, password, confirmation string) Rule {
	return Rule{
		Check: func() bool { return confirmation == "" || password == confirmation },
		Error: ValidationError{
			Field:   field,
			Message: "passwords do not match",
		},
	}
}

func charClasses(value string) int {
	classes := 0
	for _, re := range []*regexp.Regexp{uppercaseRegex, lowercaseRegex, digitRegex, specialCharRegex} {
		if re.MatchString(value) {
			classes++
		}
	}
	return classes
}
