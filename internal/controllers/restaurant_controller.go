package controllers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"restaurant_map/internal/dataset"
	"restaurant_map/internal/models"
	"restaurant_map/internal/service"
)

type RestaurantController struct {
	svc *service.RestaurantService
}

func NewRestaurantController(svc *service.RestaurantService) *RestaurantController {
	return &RestaurantController{svc: svc}
}

// List returns every record, or the subset matching cuisine, borough and score.
func (rc *RestaurantController) List(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := rc.svc.Filtered(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (rc *RestaurantController) Get(c *gin.Context) {
	r, err := rc.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (rc *RestaurantController) Create(c *gin.Context) {
	var input models.Restaurant
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restaurant input: " + err.Error()})
		return
	}

	created, err := rc.svc.Create(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (rc *RestaurantController) Update(c *gin.Context) {
	var input models.Restaurant
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid restaurant input: " + err.Error()})
		return
	}

	updated, err := rc.svc.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (rc *RestaurantController) Delete(c *gin.Context) {
	deleted, err := rc.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant deleted", "item": deleted})
}

// Nearby answers /api/stats/nearby-points?lng&lat&distance.
func (rc *RestaurantController) Nearby(c *gin.Context) {
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	if errLng != nil || errLat != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lng and lat query parameters are required numbers"})
		return
	}

	q := service.NearbyQuery{Center: models.LngLat{Lng: lng, Lat: lat}}
	if raw, ok := c.GetQuery("distance"); ok && raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "distance must be a positive number of meters"})
			return
		}
		q.MaxDistance = d
	}

	results, err := rc.svc.FindNearby(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func filterFromQuery(c *gin.Context) (dataset.Filter, error) {
	score, err := dataset.ParseScoreRange(c.Query("score"))
	if err != nil {
		return dataset.Filter{}, err
	}
	return dataset.Filter{
		Cuisine: c.Query("cuisine"),
		Borough: c.Query("borough"),
		Score:   score,
	}, nil
}
