package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout renders times the way the signing client does, so that the
// issued template and the signed text agree byte for byte.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// ChallengeVersion is the protocol version embedded in every challenge.
const ChallengeVersion = "1"

// DefaultStatement is the human-readable line the wallet displays.
const DefaultStatement = "Sign in with Ethereum to the app."

// Challenge is the structured form of the message a wallet signs to prove
// address ownership. Address is left empty on the issued template and filled
// in by the client before signing.
type Challenge struct {
	Domain         string
	Address        string
	Statement      string
	URI            string
	Version        string
	ChainID        int
	Nonce          string
	IssuedAt       time.Time
	ExpirationTime time.Time
}

const preamble = " wants you to sign in with your Ethereum account:"

// Render produces the canonical text representation of the challenge.
// The signature covers exactly these bytes, so the layout must never change.
func (c *Challenge) Render() string {
	var b strings.Builder
	b.WriteString(c.Domain)
	b.WriteString(preamble)
	b.WriteString("\n")
	b.WriteString(c.Address)
	b.WriteString("\n\n")
	b.WriteString(c.Statement)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "URI: %s\n", c.URI)
	fmt.Fprintf(&b, "Version: %s\n", c.Version)
	fmt.Fprintf(&b, "Chain ID: %d\n", c.ChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", c.Nonce)
	fmt.Fprintf(&b, "Issued At: %s\n", FormatTimestamp(c.IssuedAt))
	fmt.Fprintf(&b, "Expiration Time: %s", FormatTimestamp(c.ExpirationTime))
	return b.String()
}

// ParseChallenge reconstructs a Challenge from signed text. The signed bytes
// are authoritative: the verifier parses what the wallet actually signed
// instead of trusting a client-declared structure.
func ParseChallenge(text string) (*Challenge, error) {
	lines := strings.Split(text, "\n")
	if len(lines) != 11 {
		return nil, fmt.Errorf("%w: expected 11 lines, got %d", ErrMalformedChallenge, len(lines))
	}

	if !strings.HasSuffix(lines[0], preamble) {
		return nil, fmt.Errorf("%w: bad header line", ErrMalformedChallenge)
	}
	domain := strings.TrimSuffix(lines[0], preamble)
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrMalformedChallenge)
	}

	address := lines[1]
	if !validHexAddress(address) {
		return nil, fmt.Errorf("%w: bad address line", ErrMalformedChallenge)
	}

	if lines[2] != "" || lines[4] != "" {
		return nil, fmt.Errorf("%w: bad separator lines", ErrMalformedChallenge)
	}
	statement := lines[3]

	uri, err := fieldValue(lines[5], "URI")
	if err != nil {
		return nil, err
	}
	version, err := fieldValue(lines[6], "Version")
	if err != nil {
		return nil, err
	}
	chainStr, err := fieldValue(lines[7], "Chain ID")
	if err != nil {
		return nil, err
	}
	chainID, err := strconv.Atoi(chainStr)
	if err != nil {
		return nil, fmt.Errorf("%w: chain id %q is not a number", ErrMalformedChallenge, chainStr)
	}
	nonce, err := fieldValue(lines[8], "Nonce")
	if err != nil {
		return nil, err
	}
	issuedAtStr, err := fieldValue(lines[9], "Issued At")
	if err != nil {
		return nil, err
	}
	issuedAt, err := time.Parse(time.RFC3339, issuedAtStr)
	if err != nil {
		return nil, fmt.Errorf("%w: bad issued-at timestamp %q", ErrMalformedChallenge, issuedAtStr)
	}
	expirationStr, err := fieldValue(lines[10], "Expiration Time")
	if err != nil {
		return nil, err
	}
	expiration, err := time.Parse(time.RFC3339, expirationStr)
	if err != nil {
		return nil, fmt.Errorf("%w: bad expiration timestamp %q", ErrMalformedChallenge, expirationStr)
	}

	return &Challenge{
		Domain:         domain,
		Address:        address,
		Statement:      statement,
		URI:            uri,
		Version:        version,
		ChainID:        chainID,
		Nonce:          nonce,
		IssuedAt:       issuedAt,
		ExpirationTime: expiration,
	}, nil
}

// FormatTimestamp renders a time in the canonical challenge layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func fieldValue(line, name string) (string, error) {
	prefix := name + ": "
	if !strings.HasPrefix(line, prefix) {
		return "", fmt.Errorf("%w: missing %q field", ErrMalformedChallenge, name)
	}
	value := strings.TrimPrefix(line, prefix)
	if value == "" {
		return "", fmt.Errorf("%w: empty %q field", ErrMalformedChallenge, name)
	}
	return value, nil
}

func validHexAddress(s string) bool {
	if len(s) != 42 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return false
	}
	for _, r := range s[2:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
