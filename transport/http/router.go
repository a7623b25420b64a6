package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mish-atul/wallet-2fa-auth/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	handlers := NewAuthHandlers(authService)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.POST("/verify", handlers.Verify)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
