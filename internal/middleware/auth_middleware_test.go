package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ridelanka/booking-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(jwtService *jwt.Service, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("/protected")
	group.Use(AuthMiddleware(jwtService))
	if role != "" {
		group.Use(RequireRole(role))
	}
	group.GET("", func(c *gin.Context) {
		claims, _ := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	})
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := jwt.NewService("test-secret", time.Hour)
	router := newAuthRouter(jwtService, "")

	t.Run("Missing Header", func(t *testing.T) {
		recorder := doRequest(router, "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Malformed Header", func(t *testing.T) {
		recorder := doRequest(router, "Token abc")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		recorder := doRequest(router, "Bearer not-a-token")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		other := jwt.NewService("other-secret", time.Hour)
		token, err := other.GenerateToken("ops@example.com", nil)
		require.NoError(t, err)

		recorder := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Valid Token", func(t *testing.T) {
		token, err := jwtService.GenerateToken("ops@example.com", []string{"admin"})
		require.NoError(t, err)

		recorder := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "ops@example.com")
	})
}

func TestRequireRole(t *testing.T) {
	jwtService := jwt.NewService("test-secret", time.Hour)
	router := newAuthRouter(jwtService, "admin")

	t.Run("Role Present", func(t *testing.T) {
		token, err := jwtService.GenerateToken("ops@example.com", []string{"admin", "support"})
		require.NoError(t, err)

		recorder := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Role Missing", func(t *testing.T) {
		token, err := jwtService.GenerateToken("ops@example.com", []string{"support"})
		require.NoError(t, err)

		recorder := doRequest(router, "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}
