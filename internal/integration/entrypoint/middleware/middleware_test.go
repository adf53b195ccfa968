package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/ledger/internal/integration/adapters"
)

const testSecret = "middleware-test-secret"

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		c.String(http.StatusOK, userID.String())
	})
	router.GET("/dashboards/:dashboardId/ping", handlers...)
	return router
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthMiddleware(adapters.NewTokenService(testSecret))
	router := newRouter(auth.Authenticate())
	userID := uuid.New()

	valid, err := adapters.SignAccessToken(testSecret, userID, "user@example.com", time.Minute)
	require.NoError(t, err)
	forged, err := adapters.SignAccessToken("other-secret", userID, "user@example.com", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "forged token", header: "Bearer " + forged, status: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + valid, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboards/d1/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String(), rec.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	router := newRouter(limiter.Middleware())

	call := func(dashboard string) int {
		req := httptest.NewRequest(http.MethodGet, "/dashboards/"+dashboard+"/ping", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("a"))
	assert.Equal(t, http.StatusOK, call("a"))
	assert.Equal(t, http.StatusTooManyRequests, call("a"))
	assert.Equal(t, http.StatusOK, call("b"), "each dashboard has its own budget")

	now = now.Add(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, call("a"))

	limiter.Cleanup()
	assert.Len(t, limiter.entries, 1)
}
