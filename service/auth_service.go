package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mish-atul/wallet-2fa-auth/core"
	"github.com/Mish-atul/wallet-2fa-auth/internal/eth"
	"github.com/Mish-atul/wallet-2fa-auth/ports"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// ChallengeConfig holds the deployment-level fields embedded in every issued
// challenge. Domain and URI act as fallbacks when the request carries no
// Origin header.
type ChallengeConfig struct {
	Domain    string
	URI       string
	Statement string
	ChainID   int
}

// AuthService handles registration and the two-step wallet 2FA login
type AuthService struct {
	accounts  ports.AccountStore
	attempts  ports.AttemptStore
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher
	log       *zap.Logger

	challenge  ChallengeConfig
	attemptTTL time.Duration
	sessionTTL time.Duration

	now func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	accounts ports.AccountStore,
	attempts ports.AttemptStore,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	challenge ChallengeConfig,
	log *zap.Logger,
) *AuthService {
	if challenge.Statement == "" {
		challenge.Statement = core.DefaultStatement
	}
	return &AuthService{
		accounts:   accounts,
		attempts:   attempts,
		tokenizer:  tokenizer,
		eventPub:   eventPub,
		log:        log,
		challenge:  challenge,
		attemptTTL: core.DefaultAttemptTTL,
		sessionTTL: core.DefaultSessionTTL,
		now:        time.Now,
	}
}

// Register creates a new account with a bcrypt password digest
func (s *AuthService) Register(ctx context.Context, email, password string) (*core.Account, error) {
	email = core.NormalizeEmail(email)
	if len(password) < MinPasswordLength {
		return nil, core.ErrPasswordTooShort
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &core.Account{
		ID:             uuid.New().String(),
		Email:          email,
		PasswordDigest: string(digest),
		CreatedAt:      s.now(),
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info("account registered", zap.String("account_id", account.ID))
	return account, nil
}

// BeginLogin checks the primary credentials and mints a login attempt with a
// challenge template. The template's address is left empty; the client fills
// it in before signing. Unknown email and wrong password both return
// core.ErrInvalidCredentials so the caller cannot enumerate accounts.
func (s *AuthService) BeginLogin(ctx context.Context, email, password, origin string) (string, *core.Challenge, error) {
	email = core.NormalizeEmail(email)

	account, err := s.accounts.AccountByEmail(ctx, email)
	if err != nil {
		return "", nil, core.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordDigest), []byte(password)); err != nil {
		return "", nil, core.ErrInvalidCredentials
	}

	// Nonce and attempt id are generated independently so leaking one does
	// not help guessing the other.
	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return "", nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := s.now()
	attempt := &core.LoginAttempt{
		ID:        uuid.New().String(),
		AccountID: account.ID,
		Nonce:     hex.EncodeToString(nonceBytes),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.attemptTTL),
	}

	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		return "", nil, fmt.Errorf("failed to persist attempt: %w", err)
	}

	domain, uri := s.challengeOrigin(origin)
	challenge := &core.Challenge{
		Domain:         domain,
		Statement:      s.challenge.Statement,
		URI:            uri,
		Version:        core.ChallengeVersion,
		ChainID:        s.challenge.ChainID,
		Nonce:          attempt.Nonce,
		IssuedAt:       attempt.IssuedAt,
		ExpirationTime: attempt.ExpiresAt,
	}

	return attempt.ID, challenge, nil
}

// CompleteLogin verifies a signed challenge against its attempt, enforces the
// wallet binding, consumes the attempt and issues a session token.
func (s *AuthService) CompleteLogin(ctx context.Context, attemptID, signature, signedText string) (string, *core.Session, error) {
	attempt, err := s.attempts.AttemptByID(ctx, attemptID)
	if err != nil {
		return "", nil, err
	}

	if attempt.Consumed {
		return "", nil, core.ErrAttemptConsumed
	}
	if attempt.Expired(s.now()) {
		return "", nil, core.ErrAttemptExpired
	}

	parsed, err := core.ParseChallenge(signedText)
	if err != nil {
		return "", nil, err
	}

	// The signature covers the literal signed bytes; the recovered signer
	// must also be the address the message claims, or the message was signed
	// for someone else.
	recovered, err := eth.RecoverAddress([]byte(signedText), signature)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}
	if !strings.EqualFold(recovered.Hex(), parsed.Address) {
		return "", nil, core.ErrInvalidSignature
	}

	if parsed.Nonce != attempt.Nonce {
		return "", nil, core.ErrNonceMismatch
	}

	account, err := s.accounts.AccountByID(ctx, attempt.AccountID)
	if err != nil {
		return "", nil, err
	}

	wallet := recovered.Hex()
	firstBind := account.WalletAddress == ""

	bound, err := s.accounts.BindWallet(ctx, account.ID, wallet)
	if err != nil {
		return "", nil, err
	}
	if !strings.EqualFold(bound, wallet) {
		return "", nil, &core.WalletMismatchError{Expected: bound, Connected: wallet}
	}

	// The compare-and-set is the serialization point: of two racing
	// completions for this attempt, exactly one gets past here.
	if err := s.attempts.ConsumeAttempt(ctx, attemptID); err != nil {
		return "", nil, err
	}

	now := s.now()
	session := &core.Session{
		ID:            uuid.New().String(),
		AccountID:     account.ID,
		Email:         account.Email,
		WalletAddress: bound,
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session token: %w", err)
	}

	// Event delivery is best effort: the login already succeeded.
	if firstBind {
		if err := s.eventPub.PublishWalletBound(ctx, account.ID, bound); err != nil {
			s.log.Warn("failed to publish wallet bound event", zap.Error(err))
		}
	}
	if err := s.eventPub.PublishLogin(ctx, account.ID, bound); err != nil {
		s.log.Warn("failed to publish login event", zap.Error(err))
	}

	s.log.Info("login completed",
		zap.String("account_id", account.ID),
		zap.String("attempt_id", attemptID),
		zap.Bool("first_bind", firstBind),
	)

	return token, session, nil
}

// ValidateSession parses a bearer token and checks its expiry
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*core.Session, error) {
	session, err := s.tokenizer.TokenToSession(token)
	if err != nil {
		return nil, err
	}
	if s.now().After(session.ExpiresAt) {
		return nil, core.ErrTokenExpired
	}
	return session, nil
}

// challengeOrigin derives the challenge domain and URI from the caller's
// declared origin, falling back to the configured deployment values.
func (s *AuthService) challengeOrigin(origin string) (domain, uri string) {
	if origin != "" {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			return u.Host, origin
		}
	}
	return s.challenge.Domain, s.challenge.URI
}
