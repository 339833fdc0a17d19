package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// NormalizeEmail lowercases an address, strips whitespace and appends the
// organization domain when the user typed only the local part.
func NormalizeEmail(email, defaultDomain string) string {
	email = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(email), " ", ""))
	if email == "" {
		return ""
	}
	if !strings.Contains(email, "@") && defaultDomain != "" {
		email = email + "@" + defaultDomain
	}
	return email
}

// SanitizeString removes control characters from user-supplied text
func SanitizeString(s string) string {
	return regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
}
