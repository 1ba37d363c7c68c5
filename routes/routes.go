package routes

import (
	"time"

	"classroom/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the authentication endpoints.
func RegisterAuthRoutes(r *gin.Engine, h *handlers.AuthHandler) {
	api := r.Group("/api/auth")
	{
		api.POST("/signin", h.SignInHandler)
		api.POST("/signup", h.SignUpHandler)
		api.POST("/federated", h.FederatedSignInHandler)
		api.POST("/phone/send", h.SendPhoneCodeHandler)
		api.POST("/phone/confirm", h.ConfirmPhoneCodeHandler)
		api.POST("/signout", h.SignOutHandler)
		api.GET("/session", h.SessionHandler)
	}
}

// CORS returns the CORS policy shared by all routes.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}
