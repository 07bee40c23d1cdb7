package service

import "strings"

// NormalizeEmail lowercases and trims an email address for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
