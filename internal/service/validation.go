package service

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[\w.-]+@([\w-]+\.)+[\w-]{2,4}$`)
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// NormalizeEmail trims and lower-cases an email address. Emails are stored
// and keyed in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPhone accepts 10-digit mobile numbers starting with 6-9.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
