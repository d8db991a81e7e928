package routes

import (
	"github.com/gin-gonic/gin"

	"restaurant_map/internal/controllers"
)

func WebSocketRoutes(r *gin.Engine, hub *controllers.ChangeHub) {
	if hub == nil {
		return
	}
	r.GET("/ws/changes", hub.ServeWS)
}
