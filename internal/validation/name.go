package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// CleanName normalizes a display name: NFC form, trimmed, inner whitespace collapsed.
func CleanName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}

// ValidateName validates a person or reference-data name
func ValidateName(name string) error {
	trimmed := CleanName(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if utf8.RuneCountInString(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}

	return nil
}

// ValidateMinLength checks a trimmed text field against a minimum rune count.
func ValidateMinLength(field, value string, min int) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < min {
		return fmt.Errorf("%s must be at least %d characters", field, min)
	}
	return nil
}
