package core

import (
	"strings"
	"time"
)

// Account represents a registered user
type Account struct {
	ID             string    // Unique account identifier
	Email          string    // Normalized (lower-cased) email, unique
	PasswordDigest string    // One-way salted digest of the password
	WalletAddress  string    // Bound wallet address, empty until first 2FA completion
	CreatedAt      time.Time // When the account was registered
}

// NormalizeEmail canonicalizes an email for storage and lookup.
// Comparisons throughout the service use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
