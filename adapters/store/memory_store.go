package store

import (
	"context"
	"sync"

	"github.com/Mish-atul/wallet-2fa-auth/core"
)

// MemoryStore is an in-memory implementation of AccountStore and AttemptStore,
// used in tests and single-process deployments.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*core.Account      // keyed by account id
	byEmail  map[string]string             // normalized email -> account id
	attempts map[string]*core.LoginAttempt // keyed by attempt id
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*core.Account),
		byEmail:  make(map[string]string),
		attempts: make(map[string]*core.LoginAttempt),
	}
}

// CreateAccount stores a new account
func (s *MemoryStore) CreateAccount(ctx context.Context, account *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[account.Email]; exists {
		return core.ErrEmailTaken
	}

	cp := *account
	s.accounts[account.ID] = &cp
	s.byEmail[account.Email] = account.ID
	return nil
}

// AccountByEmail looks up an account by normalized email
func (s *MemoryStore) AccountByEmail(ctx context.Context, email string) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	cp := *s.accounts[id]
	return &cp, nil
}

// AccountByID looks up an account by id
func (s *MemoryStore) AccountByID(ctx context.Context, id string) (*core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

// BindWallet sets the account's wallet address if unset and returns the
// address bound afterwards. The whole decision runs under the store lock.
func (s *MemoryStore) BindWallet(ctx context.Context, accountID, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return "", core.ErrAccountNotFound
	}

	if account.WalletAddress == "" {
		account.WalletAddress = address
	}
	return account.WalletAddress, nil
}

// CreateAttempt stores a new login attempt
func (s *MemoryStore) CreateAttempt(ctx context.Context, attempt *core.LoginAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *attempt
	s.attempts[attempt.ID] = &cp
	return nil
}

// AttemptByID looks up a login attempt by id
func (s *MemoryStore) AttemptByID(ctx context.Context, id string) (*core.LoginAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[id]
	if !ok {
		return nil, core.ErrAttemptNotFound
	}
	cp := *attempt
	return &cp, nil
}

// ConsumeAttempt marks an attempt as used. Exactly one concurrent caller wins.
func (s *MemoryStore) ConsumeAttempt(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt, ok := s.attempts[id]
	if !ok {
		return core.ErrAttemptNotFound
	}
	if attempt.Consumed {
		return core.ErrAttemptConsumed
	}
	attempt.Consumed = true
	return nil
}
