// Package eth wraps the go-ethereum primitives the auth flow needs: EIP-191
// personal-message hashing and signer address recovery.
package eth

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// PersonalHash hashes a message the way personal_sign does: the EIP-191
// prefix with the message length, then keccak256. Browser wallets use this
// scheme for signMessage, so recovery must use the identical hash.
func PersonalHash(message []byte) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256([]byte(prefixed))
}

// RecoverAddress returns the address whose key produced signature over the
// exact bytes of message. The signature is the 65-byte r||s||v hex string a
// wallet returns from personal_sign.
func RecoverAddress(message []byte, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}

	// Wallets encode the recovery id as 27/28, go-ethereum expects 0/1.
	adjusted := make([]byte, crypto.SignatureLength)
	copy(adjusted, sig)
	if adjusted[crypto.RecoveryIDOffset] >= 27 {
		adjusted[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(PersonalHash(message), adjusted)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// SignMessage produces a personal_sign signature over message with the given
// key, encoded the way a wallet would return it. Used by tests and tooling.
func SignMessage(message []byte, key *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(PersonalHash(message), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// ValidAddress reports whether s is a well-formed hex Ethereum address.
func ValidAddress(s string) bool {
	return common.IsHexAddress(s)
}
