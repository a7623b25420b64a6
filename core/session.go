package core

import "time"

// DefaultSessionTTL is the lifetime of an issued session token.
const DefaultSessionTTL = 24 * time.Hour

// Session represents an authenticated user session issued after a completed
// 2FA login. It is carried inside the bearer token, not persisted.
type Session struct {
	ID            string    // Unique session identifier
	AccountID     string    // Authenticated account
	Email         string    // Account email at issuance time
	WalletAddress string    // Wallet that completed the 2FA challenge
	IssuedAt      time.Time // When the session was created
	ExpiresAt     time.Time // When the session expires
}
