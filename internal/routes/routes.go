package routes

import (
	"io"
	"time"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"restaurant_map/internal/controllers"
	"restaurant_map/internal/metrics"
	"restaurant_map/internal/middleware"
	"restaurant_map/internal/service"
)

// Deps are the collaborators the router hands to controllers.
type Deps struct {
	Service        *service.RestaurantService
	Hub            *controllers.ChangeHub
	Auth           *middleware.Auth
	AccessLog      io.Writer
	RequestTimeout time.Duration
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if d.AccessLog != nil {
		r.Use(ginlog.SetLogger(
			ginlog.WithWriter(d.AccessLog),
			ginlog.WithSkipPath([]string{"/metrics", "/healthz"}),
		))
	}
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics())

	stats := controllers.NewStatsController(d.Service)
	r.GET("/healthz", stats.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	APIRoutes(r, d)
	AuthRoutes(r, d.Auth)
	WebSocketRoutes(r, d.Hub)

	return r
}
