package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyEmail indicates the email address is empty
	ErrEmptyEmail = errors.New("email address cannot be empty")

	// ErrInvalidEmail indicates the email address is malformed
	ErrInvalidEmail = errors.New("email address is not valid")

	// ErrInvalidLength indicates phone number length is not 10 digits
	ErrInvalidLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidPrefix indicates phone number doesn't start with a valid Sri Lankan prefix
	ErrInvalidPrefix = errors.New("phone number must start with 070, 071, 072, 074, 075, 076, 077, 078, or 079")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")
)

// validPrefixes contains all valid Sri Lankan mobile operator prefixes
var validPrefixes = []string{
	"070", // Mobitel
	"071", // Mobitel
	"072", // Hutch
	"074", // Dialog
	"075", // Airtel
	"076", // Dialog
	"077", // Dialog
	"078", // Hutch
	"079", // Dialog
}

var (
	phoneRegex = regexp.MustCompile(`^\d+$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ContactValidator validates customer contact details
type ContactValidator struct{}

// NewContactValidator creates a new contact validator instance
func NewContactValidator() *ContactValidator {
	return &ContactValidator{}
}

// ValidateEmail validates an email address.
// Returns the trimmed, lowercased address and an error if invalid.
func (v *ContactValidator) ValidateEmail(email string) (string, error) {
	sanitized := strings.ToLower(strings.TrimSpace(email))
	if sanitized == "" {
		return "", ErrEmptyEmail
	}
	if !emailRegex.MatchString(sanitized) {
		return "", ErrInvalidEmail
	}
	return sanitized, nil
}

// ValidatePhone validates a Sri Lankan mobile number.
// Accepts format: 0771234567 or 077 123 4567 or 077-123-4567
// Returns the sanitized number (digits only) and an error if invalid.
func (v *ContactValidator) ValidatePhone(phone string) (string, error) {
	sanitized := v.SanitizePhone(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}
	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}
	if !v.isValidPrefix(sanitized) {
		return "", ErrInvalidPrefix
	}

	return sanitized, nil
}

// SanitizePhone removes spaces and dashes from a phone number
func (v *ContactValidator) SanitizePhone(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return replacer.Replace(strings.TrimSpace(phone))
}

func (v *ContactValidator) isValidPrefix(phone string) bool {
	for _, prefix := range validPrefixes {
		if strings.HasPrefix(phone, prefix) {
			return true
		}
	}
	return false
}
