package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wallet-account-service/internal/adapter/gin/handler"
	"wallet-account-service/internal/adapter/gin/middleware"
	"wallet-account-service/pkg/logger"
)

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	accountHandler *handler.AccountHandler,
	walletHandler *handler.WalletHandler,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(logger.RequestIDMiddleware())
	router.Use(middleware.Logger(log))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "wallet-account-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", accountHandler.Register)
			auth.POST("/login", accountHandler.Login)
			auth.POST("/logout", accountHandler.Logout)
		}

		me := v1.Group("/me")
		{
			me.GET("", accountHandler.Me)
			me.PATCH("/profile", accountHandler.UpdateProfile)
			me.PATCH("/notifications/:id", accountHandler.MarkNotification)
		}

		wallet := v1.Group("/wallet")
		{
			wallet.POST("/deposit", walletHandler.Deposit)
			wallet.POST("/withdraw", walletHandler.Withdraw)
			wallet.POST("/transfer", walletHandler.Transfer)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/users", accountHandler.ListUsers)
			admin.POST("/users", accountHandler.AdminCreateUser)
			admin.POST("/balance", walletHandler.AdminAdjust)
		}
	}

	return router
}
