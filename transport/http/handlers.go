package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mish-atul/wallet-2fa-auth/core"
	"github.com/Mish-atul/wallet-2fa-auth/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// challengeJSON is the wire form of a challenge template. Timestamps use the
// same layout as the canonical text so the client can render either way.
type challengeJSON struct {
	Domain         string `json:"domain"`
	Address        string `json:"address"`
	Statement      string `json:"statement"`
	URI            string `json:"uri"`
	Version        string `json:"version"`
	ChainID        int    `json:"chainId"`
	Nonce          string `json:"nonce"`
	IssuedAt       string `json:"issuedAt"`
	ExpirationTime string `json:"expirationTime"`
}

func toChallengeJSON(c *core.Challenge) challengeJSON {
	return challengeJSON{
		Domain:         c.Domain,
		Address:        c.Address,
		Statement:      c.Statement,
		URI:            c.URI,
		Version:        c.Version,
		ChainID:        c.ChainID,
		Nonce:          c.Nonce,
		IssuedAt:       core.FormatTimestamp(c.IssuedAt),
		ExpirationTime: core.FormatTimestamp(c.ExpirationTime),
	}
}

// Register handles account creation
func (h *AuthHandlers) Register(c *gin.Context) {
	var req struct {
		Email           string `json:"email" binding:"required"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	account, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters long"})
		case errors.Is(err, core.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":    account.ID,
			"email": account.Email,
		},
	})
}

// Login handles the first 2FA step: credential check and challenge issuance
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	attemptID, challenge, err := h.authService.BeginLogin(
		c.Request.Context(), req.Email, req.Password, c.GetHeader("Origin"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attemptId": attemptID,
		"challenge": toChallengeJSON(challenge),
	})
}

// Verify handles the second 2FA step: signature verification and token issuance
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		AttemptID string `json:"attemptId" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		Message   string `json:"message" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	token, session, err := h.authService.CompleteLogin(
		c.Request.Context(), req.AttemptID, req.Signature, req.Message)
	if err != nil {
		var mismatch *core.WalletMismatchError
		switch {
		case errors.As(err, &mismatch):
			c.JSON(http.StatusForbidden, gin.H{
				"error":           "Wallet address mismatch. Please use the correct wallet.",
				"expectedWallet":  core.MaskAddress(mismatch.Expected),
				"connectedWallet": core.MaskAddress(mismatch.Connected),
			})
		case errors.Is(err, core.ErrAttemptNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login session"})
		case errors.Is(err, core.ErrAttemptConsumed):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login session already used"})
		case errors.Is(err, core.ErrAttemptExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login session expired"})
		case errors.Is(err, core.ErrMalformedChallenge):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed challenge message"})
		case errors.Is(err, core.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		case errors.Is(err, core.ErrNonceMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid nonce"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"account": gin.H{
			"id":            session.AccountID,
			"email":         session.Email,
			"walletAddress": session.WalletAddress,
		},
		"expiresAt": core.FormatTimestamp(session.ExpiresAt),
	})
}

// Me returns information about the authenticated session
func (h *AuthHandlers) Me(c *gin.Context) {
	session, exists := sessionFromContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            session.AccountID,
		"email":         session.Email,
		"walletAddress": session.WalletAddress,
		"expiresAt":     core.FormatTimestamp(session.ExpiresAt),
	})
}
