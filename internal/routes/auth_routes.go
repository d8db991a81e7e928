package routes

import (
	"github.com/gin-gonic/gin"

	"restaurant_map/internal/controllers"
	"restaurant_map/internal/middleware"
)

// AuthRoutes exposes the token endpoint only when editor auth is configured.
func AuthRoutes(r *gin.Engine, auth *middleware.Auth) {
	if !auth.Enabled() {
		return
	}
	ac := controllers.NewAuthController(auth)
	r.POST("/auth/token", ac.Token)
}
