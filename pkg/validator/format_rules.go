package validator

import (
	"net/mail"
	"strings"
)

// ValidEmail fails for values that are not a plausible single email address.
// Uses RFC 5322 parsing plus a few practical restrictions (no display names,
// domain must contain a dot).
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}
			at := strings.LastIndex(value, "@")
			return at > 0 && strings.Contains(value[at+1:], ".")
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid email address",
		},
	}
}
