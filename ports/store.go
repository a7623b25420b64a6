package ports

import (
	"context"

	"github.com/Mish-atul/wallet-2fa-auth/core"
)

// AccountStore persists accounts and the one-shot wallet binding
type AccountStore interface {
	CreateAccount(ctx context.Context, account *core.Account) error
	AccountByEmail(ctx context.Context, email string) (*core.Account, error)
	AccountByID(ctx context.Context, id string) (*core.Account, error)

	// BindWallet sets the account's wallet address if none is bound yet and
	// returns the address that is bound afterwards. The set-if-unset decision
	// must be atomic: two concurrent binds for the same account resolve to a
	// single stored address.
	BindWallet(ctx context.Context, accountID, address string) (string, error)
}

// AttemptStore is the nonce ledger: one record per pending login attempt
type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt *core.LoginAttempt) error
	AttemptByID(ctx context.Context, id string) (*core.LoginAttempt, error)

	// ConsumeAttempt flips the attempt's consumed flag. It must behave as a
	// compare-and-set: concurrent calls for the same id admit exactly one
	// winner, the rest get core.ErrAttemptConsumed.
	ConsumeAttempt(ctx context.Context, id string) error
}
