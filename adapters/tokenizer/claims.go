package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the account fields a session
// token carries
type SessionClaims struct {
	jwt.RegisteredClaims
	Email  string `json:"email"`
	Wallet string `json:"wallet"`
}
