package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"restaurant_map/internal/middleware"
)

type AuthController struct {
	auth *middleware.Auth
}

func NewAuthController(auth *middleware.Auth) *AuthController {
	return &AuthController{auth: auth}
}

// Token exchanges the editor credentials for a bearer token.
func (ac *AuthController) Token(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := ac.auth.Login(body.Username, body.Password)
	if err != nil {
		if errors.Is(err, middleware.ErrBadCredentials) {
			logrus.WithField("username", body.Username).Warn("rejected editor login")
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
