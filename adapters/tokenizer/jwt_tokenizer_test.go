package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mish-atul/wallet-2fa-auth/core"
)

func newTestKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func testSession() *core.Session {
	now := time.Now().Truncate(time.Second)
	return &core.Session{
		ID:            "session-1",
		AccountID:     "acc-1",
		Email:         "u1@x.com",
		WalletAddress: "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		IssuedAt:      now,
		ExpiresAt:     now.Add(24 * time.Hour),
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	tk := NewJWTTokenizer(newTestKey(t))

	session := testSession()
	token, err := tk.SessionToToken(session)
	require.NoError(t, err)

	got, err := tk.TokenToSession(token)
	require.NoError(t, err)

	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.AccountID, got.AccountID)
	assert.Equal(t, session.Email, got.Email)
	assert.Equal(t, session.WalletAddress, got.WalletAddress)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))
}

func TestTokenFromDifferentKeyRejected(t *testing.T) {
	token, err := NewJWTTokenizer(newTestKey(t)).SessionToToken(testSession())
	require.NoError(t, err)

	_, err = NewJWTTokenizer(newTestKey(t)).TokenToSession(token)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	tk := NewJWTTokenizer(newTestKey(t))

	session := testSession()
	session.IssuedAt = time.Now().Add(-48 * time.Hour)
	session.ExpiresAt = time.Now().Add(-24 * time.Hour)

	token, err := tk.SessionToToken(session)
	require.NoError(t, err)

	_, err = tk.TokenToSession(token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestGarbageTokenRejected(t *testing.T) {
	tk := NewJWTTokenizer(newTestKey(t))

	_, err := tk.TokenToSession("not.a.jwt")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}
