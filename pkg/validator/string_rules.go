package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Required fails when the value is empty or whitespace-only.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{
			Field:   field,
			Message: "is required",
		},
	}
}

// MinLen fails when the value is shorter than min runes.
func MinLen(field, value string, min int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) >= min },
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %d characters", min),
		},
	}
}

// MaxLen fails when the value is longer than max runes.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters", max),
		},
	}
}
