package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mish-atul/wallet-2fa-auth/core"
)

func TestMemoryStoreAccounts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	account := &core.Account{
		ID:             "acc-1",
		Email:          "u1@x.com",
		PasswordDigest: "digest",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, s.CreateAccount(ctx, account))

	err := s.CreateAccount(ctx, &core.Account{ID: "acc-2", Email: "u1@x.com"})
	assert.ErrorIs(t, err, core.ErrEmailTaken)

	got, err := s.AccountByEmail(ctx, "u1@x.com")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", got.ID)

	_, err = s.AccountByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, core.ErrAccountNotFound)

	_, err = s.AccountByID(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrAccountNotFound)
}

func TestMemoryStoreBindWallet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateAccount(ctx, &core.Account{ID: "acc-1", Email: "u1@x.com"}))

	bound, err := s.BindWallet(ctx, "acc-1", "0xABC")
	require.NoError(t, err)
	assert.Equal(t, "0xABC", bound)

	// A second bind does not overwrite the first.
	bound, err = s.BindWallet(ctx, "acc-1", "0xDEF")
	require.NoError(t, err)
	assert.Equal(t, "0xABC", bound)

	got, err := s.AccountByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "0xABC", got.WalletAddress)
}

func TestMemoryStoreConsumeAttemptOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	attempt := &core.LoginAttempt{
		ID:        "att-1",
		AccountID: "acc-1",
		Nonce:     "nonce",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(2 * time.Minute),
	}
	require.NoError(t, s.CreateAttempt(ctx, attempt))

	require.NoError(t, s.ConsumeAttempt(ctx, "att-1"))
	assert.ErrorIs(t, s.ConsumeAttempt(ctx, "att-1"), core.ErrAttemptConsumed)
	assert.ErrorIs(t, s.ConsumeAttempt(ctx, "att-2"), core.ErrAttemptNotFound)

	got, err := s.AttemptByID(ctx, "att-1")
	require.NoError(t, err)
	assert.True(t, got.Consumed)
}

func TestMemoryStoreConsumeAttemptConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateAttempt(ctx, &core.LoginAttempt{
		ID:        "att-1",
		ExpiresAt: time.Now().Add(2 * time.Minute),
	}))

	const racers = 32
	var wg sync.WaitGroup
	results := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.ConsumeAttempt(ctx, "att-1")
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		default:
			assert.ErrorIs(t, err, core.ErrAttemptConsumed)
			losses++
		}
	}

	assert.Equal(t, 1, wins, "exactly one racer may consume the attempt")
	assert.Equal(t, racers-1, losses)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateAccount(ctx, &core.Account{ID: "acc-1", Email: "u1@x.com"}))

	got, err := s.AccountByID(ctx, "acc-1")
	require.NoError(t, err)
	got.WalletAddress = "0xMUTATED"

	again, err := s.AccountByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Empty(t, again.WalletAddress)
}
