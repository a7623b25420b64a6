package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Mish-atul/wallet-2fa-auth/core"
)

// attemptRetention keeps consumed and expired records around for a while so a
// retried completion still gets a specific error instead of "not found".
const attemptRetention = 24 * time.Hour

// consumeScript flips the consumed flag only if the attempt exists and is not
// yet consumed. Running as a Lua script makes the check-and-set atomic.
var consumeScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
if redis.call("HGET", KEYS[1], "consumed") == "1" then
	return 0
end
redis.call("HSET", KEYS[1], "consumed", "1")
return 1
`)

// RedisStore is a Redis implementation of the AttemptStore interface
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis attempt store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "auth:attempt:",
	}
}

// CreateAttempt stores a login attempt as a Redis hash
func (s *RedisStore) CreateAttempt(ctx context.Context, attempt *core.LoginAttempt) error {
	key := s.prefix + attempt.ID

	consumed := "0"
	if attempt.Consumed {
		consumed = "1"
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"account_id", attempt.AccountID,
		"nonce", attempt.Nonce,
		"issued_at", attempt.IssuedAt.UTC().Format(time.RFC3339Nano),
		"expires_at", attempt.ExpiresAt.UTC().Format(time.RFC3339Nano),
		"consumed", consumed,
	)
	pipe.Expire(ctx, key, attemptRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

// AttemptByID loads a login attempt by id
func (s *RedisStore) AttemptByID(ctx context.Context, id string) (*core.LoginAttempt, error) {
	key := s.prefix + id

	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	if len(fields) == 0 {
		return nil, core.ErrAttemptNotFound
	}

	issuedAt, err := time.Parse(time.RFC3339Nano, fields["issued_at"])
	if err != nil {
		return nil, fmt.Errorf("corrupt issued_at for attempt %s: %w", id, err)
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, fields["expires_at"])
	if err != nil {
		return nil, fmt.Errorf("corrupt expires_at for attempt %s: %w", id, err)
	}

	return &core.LoginAttempt{
		ID:        id,
		AccountID: fields["account_id"],
		Nonce:     fields["nonce"],
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		Consumed:  fields["consumed"] == "1",
	}, nil
}

// ConsumeAttempt marks an attempt as used via an atomic Lua compare-and-set
func (s *RedisStore) ConsumeAttempt(ctx context.Context, id string) error {
	key := s.prefix + id

	res, err := consumeScript.Run(ctx, s.client, []string{key}).Int()
	if err != nil {
		return fmt.Errorf("failed to consume attempt: %w", err)
	}

	switch res {
	case 1:
		return nil
	case 0:
		return core.ErrAttemptConsumed
	default:
		return core.ErrAttemptNotFound
	}
}
