package sanitizer

import (
	"regexp"
	"strings"
)

var dotRegex = regexp.MustCompile(`\.{2,}`)

// NormalizeEmail lowercases and trims an email address so the same mailbox
// never produces two distinct account keys. Consecutive dots in the local
// part are consolidated; clearly invalid input is returned unchanged and
// left for the validator to reject.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	local := dotRegex.ReplaceAllString(parts[0], ".")
	local = strings.Trim(local, ".")

	return local + "@" + parts[1]
}

// MaskEmail hides the local part for logging while keeping the domain and
// first character for recognition.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	local := parts[0]
	switch len(local) {
	case 0:
		return email
	case 1:
		return "*@" + parts[1]
	default:
		return string(local[0]) + strings.Repeat("*", len(local)-1) + "@" + parts[1]
	}
}
