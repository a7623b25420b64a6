package ports

import "context"

// EventPublisher publishes events to notify other services
type EventPublisher interface {
	// PublishLogin reports a completed 2FA login.
	PublishLogin(ctx context.Context, accountID, address string) error

	// PublishWalletBound reports that an account was bound to its wallet for
	// the first time.
	PublishWalletBound(ctx context.Context, accountID, address string) error
}
