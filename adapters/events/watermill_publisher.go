package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Mish-atul/wallet-2fa-auth/ports"
)

const (
	// LoginTopic carries completed 2FA logins
	LoginTopic = "auth.login"

	// WalletBoundTopic carries first-time wallet bindings
	WalletBoundTopic = "auth.wallet_bound"
)

// LoginEvent represents a completed 2FA login
type LoginEvent struct {
	AccountID string `json:"account_id"`
	Address   string `json:"address"`
}

// WalletBoundEvent represents an account being pinned to its wallet
type WalletBoundEvent struct {
	AccountID string `json:"account_id"`
	Address   string `json:"address"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, accountID, address string) error {
	return p.publish(LoginTopic, LoginEvent{AccountID: accountID, Address: address})
}

// PublishWalletBound publishes a wallet binding event
func (p *WatermillPublisher) PublishWalletBound(ctx context.Context, accountID, address string) error {
	return p.publish(WalletBoundTopic, WalletBoundEvent{AccountID: accountID, Address: address})
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

// PublishLogin implements EventPublisher
func (NopPublisher) PublishLogin(ctx context.Context, accountID, address string) error { return nil }

// PublishWalletBound implements EventPublisher
func (NopPublisher) PublishWalletBound(ctx context.Context, accountID, address string) error {
	return nil
}
