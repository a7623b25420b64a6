package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChallenge() *Challenge {
	return &Challenge{
		Domain:         "app.example.com",
		Address:        "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		Statement:      DefaultStatement,
		URI:            "https://app.example.com",
		Version:        ChallengeVersion,
		ChainID:        1,
		Nonce:          "32891756",
		IssuedAt:       time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		ExpirationTime: time.Date(2024, 3, 1, 10, 32, 0, 0, time.UTC),
	}
}

func TestChallengeRender(t *testing.T) {
	got := testChallenge().Render()

	want := "app.example.com wants you to sign in with your Ethereum account:\n" +
		"0x8ba1f109551bD432803012645Ac136ddd64DBA72\n" +
		"\n" +
		"Sign in with Ethereum to the app.\n" +
		"\n" +
		"URI: https://app.example.com\n" +
		"Version: 1\n" +
		"Chain ID: 1\n" +
		"Nonce: 32891756\n" +
		"Issued At: 2024-03-01T10:30:00.000Z\n" +
		"Expiration Time: 2024-03-01T10:32:00.000Z"

	assert.Equal(t, want, got)
}

func TestChallengeRoundTrip(t *testing.T) {
	original := testChallenge()

	parsed, err := ParseChallenge(original.Render())
	require.NoError(t, err)

	assert.Equal(t, original.Domain, parsed.Domain)
	assert.Equal(t, original.Address, parsed.Address)
	assert.Equal(t, original.Statement, parsed.Statement)
	assert.Equal(t, original.URI, parsed.URI)
	assert.Equal(t, original.Version, parsed.Version)
	assert.Equal(t, original.ChainID, parsed.ChainID)
	assert.Equal(t, original.Nonce, parsed.Nonce)
	assert.True(t, original.IssuedAt.Equal(parsed.IssuedAt))
	assert.True(t, original.ExpirationTime.Equal(parsed.ExpirationTime))
}

func TestChallengeRenderParseStable(t *testing.T) {
	// The parsed form must re-render to the identical bytes, otherwise the
	// issuer and verifier could disagree about what was signed.
	text := testChallenge().Render()

	parsed, err := ParseChallenge(text)
	require.NoError(t, err)

	assert.Equal(t, text, parsed.Render())
}

func TestParseChallengeRejectsMalformedText(t *testing.T) {
	valid := testChallenge().Render()

	cases := map[string]string{
		"empty":             "",
		"truncated":         strings.Join(strings.Split(valid, "\n")[:6], "\n"),
		"bad header":        strings.Replace(valid, "wants you to sign in", "wants you to log in", 1),
		"bad address":       strings.Replace(valid, "0x8ba1f109551bD432803012645Ac136ddd64DBA72", "not-an-address-aaaaaaaaaaaaaaaaaaaaaaaaaaa", 1),
		"bad chain id":      strings.Replace(valid, "Chain ID: 1", "Chain ID: mainnet", 1),
		"missing nonce":     strings.Replace(valid, "Nonce: 32891756", "nonce: 32891756", 1),
		"bad issued at":     strings.Replace(valid, "Issued At: 2024-03-01T10:30:00.000Z", "Issued At: yesterday", 1),
		"missing separator": strings.Replace(valid, "\n\nURI:", "\nURI:", 1),
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseChallenge(text)
			assert.ErrorIs(t, err, ErrMalformedChallenge)
		})
	}
}

func TestParseChallengeAcceptsUnpaddedTimestamps(t *testing.T) {
	// Clients that render timestamps without milliseconds still parse.
	text := strings.Replace(testChallenge().Render(),
		"Issued At: 2024-03-01T10:30:00.000Z", "Issued At: 2024-03-01T10:30:00Z", 1)

	parsed, err := ParseChallenge(text)
	require.NoError(t, err)
	assert.True(t, parsed.IssuedAt.Equal(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)))
}

func TestMaskAddress(t *testing.T) {
	assert.Equal(t, "0x8ba1f1...BA72", MaskAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72"))
	assert.Equal(t, "0xshort", MaskAddress("0xshort"))
}
