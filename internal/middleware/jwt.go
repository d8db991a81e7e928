package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"restaurant_map/internal/config"
)

const roleEditor = "editor"

var ErrBadCredentials = errors.New("invalid username or password")

// Claims identify an editor allowed to change records.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth issues and checks editor tokens. With no secret configured every
// request is let through.
type Auth struct {
	secret       []byte
	user         string
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAuth(cfg config.AuthConfig) *Auth {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Auth{
		secret:       []byte(cfg.Secret),
		user:         cfg.EditorUser,
		passwordHash: []byte(cfg.EditorPasswordHash),
		ttl:          ttl,
		now:          time.Now,
	}
}

func (a *Auth) Enabled() bool { return len(a.secret) > 0 }

// Login checks the editor credentials and returns a signed token.
func (a *Auth) Login(username, password string) (string, error) {
	if username != a.user {
		return "", ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", ErrBadCredentials
	}
	return a.GenerateToken(username)
}

func (a *Auth) GenerateToken(subject string) (string, error) {
	now := a.now()
	claims := Claims{
		Role: roleEditor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Auth) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// RequireEditor ensures a valid editor JWT is present when auth is enabled.
func (a *Auth) RequireEditor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		claims, err := a.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			logrus.WithError(err).Debug("rejected editor token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if claims.Role != roleEditor {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Set("editor", claims.Subject)
		c.Next()
	}
}
