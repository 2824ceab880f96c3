package http

import (
	"regexp"
	"unicode/utf8"
)

// Credential limits for the local identity provider.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores bytes past 72
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidUsername checks if a username is safe (alphanumeric, dot, underscore, hyphen)
func ValidUsername(s string) bool {
	if len(s) < MinUsernameLength || len(s) > MaxUsernameLength {
		return false
	}
	return usernamePattern.MatchString(s)
}

// ValidPassword checks length only; bcrypt works on bytes.
func ValidPassword(s string) bool {
	return utf8.RuneCountInString(s) >= MinPasswordLength && len(s) <= MaxPasswordLength
}
