package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned for both unknown emails and wrong
	// passwords. The two cases must stay indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registering an already-used email
	ErrEmailTaken = errors.New("email already registered")

	// ErrPasswordTooShort is returned when a registration password is below
	// the minimum length
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")

	// ErrAccountNotFound is returned when an account lookup finds nothing
	ErrAccountNotFound = errors.New("account not found")

	// ErrAttemptNotFound is returned when a login attempt id is unknown
	ErrAttemptNotFound = errors.New("login attempt not found")

	// ErrAttemptConsumed is returned when a login attempt was already completed
	ErrAttemptConsumed = errors.New("login attempt already used")

	// ErrAttemptExpired is returned when a login attempt has expired
	ErrAttemptExpired = errors.New("login attempt expired")

	// ErrMalformedChallenge is returned when signed text does not follow the
	// canonical challenge grammar
	ErrMalformedChallenge = errors.New("malformed challenge message")

	// ErrInvalidSignature is returned when signature recovery fails or the
	// recovered signer does not match the address in the signed text
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrNonceMismatch is returned when the signed nonce is not the one issued
	// for this attempt
	ErrNonceMismatch = errors.New("nonce mismatch")

	// ErrInvalidToken is returned when a session token is unparsable or forged
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a session token has expired
	ErrTokenExpired = errors.New("token has expired")
)

// WalletMismatchError is returned when a signature from the wrong wallet tries
// to complete a login for an account that is already bound to another address.
// It carries both addresses so the caller can tell the user which wallet to
// switch to.
type WalletMismatchError struct {
	Expected  string
	Connected string
}

func (e *WalletMismatchError) Error() string {
	return fmt.Sprintf("wallet mismatch: account is bound to %s, signature is from %s",
		MaskAddress(e.Expected), MaskAddress(e.Connected))
}

// MaskAddress truncates an address to its first and last characters so it can
// appear in error payloads without disclosing the full value.
func MaskAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-4:]
}
