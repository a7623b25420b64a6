package eth

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndRecover(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	message := []byte("example.com wants you to sign in with your Ethereum account:\n0x0000")

	sig, err := SignMessage(message, key)
	require.NoError(t, err)

	got, err := RecoverAddress(message, sig)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRecoverAddressTamperedMessage(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	sig, err := SignMessage([]byte("original message"), key)
	require.NoError(t, err)

	got, err := RecoverAddress([]byte("tampered message"), sig)
	require.NoError(t, err)
	assert.NotEqual(t, want, got, "a tampered message must not recover the signer")
}

func TestRecoverAddressRejectsBadInput(t *testing.T) {
	_, err := RecoverAddress([]byte("msg"), "not-hex")
	assert.Error(t, err)

	_, err = RecoverAddress([]byte("msg"), "0xdeadbeef")
	assert.Error(t, err, "short signatures are rejected")
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72"))
	assert.False(t, ValidAddress("8ba1f109551bD432803012645Ac136ddd64DBA72x"))
	assert.False(t, ValidAddress("0x123"))
}
