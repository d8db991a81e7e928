package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"restaurant_map/internal/config"
	"restaurant_map/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuth(t *testing.T, secret string) *middleware.Auth {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return middleware.NewAuth(config.AuthConfig{
		Secret:             secret,
		EditorUser:         "editor",
		EditorPasswordHash: string(hash),
		TokenTTL:           time.Hour,
	})
}

func protectedRouter(a *middleware.Auth) *gin.Engine {
	r := gin.New()
	r.POST("/items", a.RequireEditor(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func post(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/items", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireEditorDisabled(t *testing.T) {
	r := protectedRouter(newAuth(t, ""))
	if w := post(r, ""); w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201 when auth is disabled", w.Code)
	}
}

func TestRequireEditor(t *testing.T) {
	a := newAuth(t, "test-secret")
	r := protectedRouter(a)

	token, err := a.Login("editor", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	forged, _ := newAuth(t, "other-secret").GenerateToken("editor")

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"wrong signing key", "Bearer " + forged, http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := post(r, tc.header); w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newAuth(t, "test-secret")
	if _, err := a.Login("editor", "wrong"); err != middleware.ErrBadCredentials {
		t.Errorf("Login(wrong password) = %v, want ErrBadCredentials", err)
	}
	if _, err := a.Login("someone", "s3cret"); err != middleware.ErrBadCredentials {
		t.Errorf("Login(wrong user) = %v, want ErrBadCredentials", err)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS())
	r.GET("/api/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/items", nil)
	req.Header.Set("Origin", "http://localhost:5500")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5500" {
		t.Errorf("Allow-Origin = %q, want the request origin", got)
	}
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Timeout(time.Second))
	var hasDeadline bool
	r.GET("/", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !hasDeadline {
		t.Error("request context has no deadline")
	}
}
