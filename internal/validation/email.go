package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ValidateEmail validates email format and length
// Uses Go's built-in net/mail parser which follows RFC 5322
func ValidateEmail(email string) error {
	// Check length (RFC 5321: local part max 64, domain max 255, total max 254 with @)
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	if email == "" {
		return errors.New("email address is required")
	}

	// Parse using Go's RFC 5322 compliant parser
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address format")
	}

	return nil
}

// ValidateEmailDomain requires the address to belong to domain.
// An empty domain accepts any address.
func ValidateEmailDomain(email, domain string) error {
	if domain == "" {
		return nil
	}
	domain = strings.TrimPrefix(strings.ToLower(domain), "@")
	if !strings.HasSuffix(strings.ToLower(email), "@"+domain) {
		return fmt.Errorf("email must use the @%s domain", domain)
	}
	return nil
}

// NormalizeEmail lowercases and trims an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
