package core

import "time"

// DefaultAttemptTTL is how long a login attempt stays completable.
const DefaultAttemptTTL = 2 * time.Minute

// LoginAttempt represents one pending 2FA challenge. It is created after a
// successful password check and consumed at most once by signature verification.
type LoginAttempt struct {
	ID        string    // Unique attempt identifier, exposed to the client
	AccountID string    // Owning account
	Nonce     string    // Random nonce the wallet must sign
	IssuedAt  time.Time // When the attempt was created
	ExpiresAt time.Time // When the attempt expires
	Consumed  bool      // Set exactly once, never cleared
}

// Expired reports whether the attempt can no longer be completed.
func (a *LoginAttempt) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}
