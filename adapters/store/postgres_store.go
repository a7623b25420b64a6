package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mish-atul/wallet-2fa-auth/core"
)

// PostgresStore is a Postgres implementation of AccountStore and AttemptStore.
// Attempt consumption and wallet binding use conditional updates, so the
// single-use and bind-once invariants hold under concurrent completions.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new Postgres store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the tables the store needs if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_digest TEXT NOT NULL,
			wallet_address TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS login_attempts (
			id UUID PRIMARY KEY,
			account_id UUID NOT NULL REFERENCES accounts(id),
			nonce TEXT NOT NULL,
			issued_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			consumed BOOLEAN NOT NULL DEFAULT FALSE
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateAccount inserts a new account row
func (s *PostgresStore) CreateAccount(ctx context.Context, account *core.Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, email, password_digest, created_at)
		VALUES ($1, $2, $3, $4)
	`, account.ID, account.Email, account.PasswordDigest, account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return core.ErrEmailTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// AccountByEmail looks up an account by normalized email
func (s *PostgresStore) AccountByEmail(ctx context.Context, email string) (*core.Account, error) {
	return s.scanAccount(s.pool.QueryRow(ctx, `
		SELECT id, email, password_digest, COALESCE(wallet_address, ''), created_at
		FROM accounts WHERE email = $1
	`, email))
}

// AccountByID looks up an account by id
func (s *PostgresStore) AccountByID(ctx context.Context, id string) (*core.Account, error) {
	return s.scanAccount(s.pool.QueryRow(ctx, `
		SELECT id, email, password_digest, COALESCE(wallet_address, ''), created_at
		FROM accounts WHERE id = $1
	`, id))
}

func (s *PostgresStore) scanAccount(row pgx.Row) (*core.Account, error) {
	var a core.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordDigest, &a.WalletAddress, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &a, nil
}

// BindWallet sets the wallet address if none is bound yet. The conditional
// UPDATE makes the set-if-unset decision atomic; whatever address is stored
// afterwards is returned.
func (s *PostgresStore) BindWallet(ctx context.Context, accountID, address string) (string, error) {
	_, err := s.pool.Exec(ctx, `
		UPDATE accounts SET wallet_address = $2
		WHERE id = $1 AND wallet_address IS NULL
	`, accountID, address)
	if err != nil {
		return "", fmt.Errorf("failed to bind wallet: %w", err)
	}

	var bound string
	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(wallet_address, '') FROM accounts WHERE id = $1
	`, accountID).Scan(&bound)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", core.ErrAccountNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read bound wallet: %w", err)
	}
	return bound, nil
}

// CreateAttempt inserts a new login attempt row
func (s *PostgresStore) CreateAttempt(ctx context.Context, attempt *core.LoginAttempt) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO login_attempts (id, account_id, nonce, issued_at, expires_at, consumed)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, attempt.ID, attempt.AccountID, attempt.Nonce, attempt.IssuedAt, attempt.ExpiresAt, attempt.Consumed)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

// AttemptByID looks up a login attempt by id
func (s *PostgresStore) AttemptByID(ctx context.Context, id string) (*core.LoginAttempt, error) {
	var a core.LoginAttempt
	err := s.pool.QueryRow(ctx, `
		SELECT id, account_id, nonce, issued_at, expires_at, consumed
		FROM login_attempts WHERE id = $1
	`, id).Scan(&a.ID, &a.AccountID, &a.Nonce, &a.IssuedAt, &a.ExpiresAt, &a.Consumed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	return &a, nil
}

// ConsumeAttempt flips the consumed flag with a compare-and-set UPDATE.
// Two racing completions for the same attempt admit exactly one winner.
func (s *PostgresStore) ConsumeAttempt(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE login_attempts SET consumed = TRUE
		WHERE id = $1 AND consumed = FALSE
	`, id)
	if err != nil {
		return fmt.Errorf("failed to consume attempt: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Distinguish "already used" from "never existed".
	var consumed bool
	err = s.pool.QueryRow(ctx, `
		SELECT consumed FROM login_attempts WHERE id = $1
	`, id).Scan(&consumed)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrAttemptNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check attempt: %w", err)
	}
	return core.ErrAttemptConsumed
}
