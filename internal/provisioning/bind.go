package provisioning

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// BindType tags the contact channel an account is bound to.
type BindType string

const (
	BindTypeEmail BindType = "email"
	BindTypePhone BindType = "phone"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Canonical produces the canonical bind value for the variant. Emails are
// trimmed and lowercased; phone numbers are parsed with the ISO-3166 alpha-2
// region and rendered in international format, matching what the identity
// service stores on sign-up.
func (b BindType) Canonical(value, iso string) (string, error) {
	switch b {
	case BindTypeEmail:
		email := strings.ToLower(strings.TrimSpace(value))
		if !emailPattern.MatchString(email) {
			return "", fmt.Errorf("invalid email address: %q", value)
		}
		return email, nil
	case BindTypePhone:
		number, err := phonenumbers.Parse(strings.TrimSpace(value), strings.ToUpper(iso))
		if err != nil {
			return "", fmt.Errorf("parse phone number %q: %w", value, err)
		}
		if !phonenumbers.IsValidNumber(number) {
			return "", fmt.Errorf("invalid phone number: %q", value)
		}
		return phonenumbers.Format(number, phonenumbers.INTERNATIONAL), nil
	default:
		return "", fmt.Errorf("unknown bind type: %q", b)
	}
}

// Valid reports whether the bind type is one of the supported variants.
func (b BindType) Valid() bool {
	return b == BindTypeEmail || b == BindTypePhone
}
