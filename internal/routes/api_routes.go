package routes

import (
	"github.com/gin-gonic/gin"

	"restaurant_map/internal/controllers"
	"restaurant_map/internal/middleware"
)

func APIRoutes(r *gin.Engine, d Deps) {
	items := controllers.NewRestaurantController(d.Service)
	stats := controllers.NewStatsController(d.Service)

	api := r.Group("/api")
	api.Use(middleware.Timeout(d.RequestTimeout))
	{
		api.GET("/items", items.List)
		api.GET("/items/:id", items.Get)
		api.POST("/items", d.Auth.RequireEditor(), items.Create)
		api.PUT("/items/:id", d.Auth.RequireEditor(), items.Update)
		api.DELETE("/items/:id", d.Auth.RequireEditor(), items.Delete)

		api.GET("/stats/scores-by-cuisine", stats.ScoresByCuisine)
		api.GET("/stats/nearby-points", items.Nearby)
		api.GET("/stats/breakdown", stats.Breakdown)
		api.GET("/stats/heatmap", stats.Heatmap)
	}
}
