package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"restaurant_map/internal/dataset"
	"restaurant_map/internal/service"
)

type StatsController struct {
	svc *service.RestaurantService
}

func NewStatsController(svc *service.RestaurantService) *StatsController {
	return &StatsController{svc: svc}
}

func (sc *StatsController) ScoresByCuisine(c *gin.Context) {
	scores, err := sc.svc.AverageScoreByCuisine(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

// Breakdown feeds the charts: top cuisines, boroughs and score buckets.
func (sc *StatsController) Breakdown(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	limit := dataset.DefaultTopCuisines
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
	}

	b, err := sc.svc.Breakdown(c.Request.Context(), f, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (sc *StatsController) Heatmap(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	points, err := sc.svc.Heatmap(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// Health pings the store.
func (sc *StatsController) Health(c *gin.Context) {
	if err := sc.svc.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
