package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func authRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuthMiddleware(testSecret, "copycheck"))
	if limiter != nil {
		router.Use(RateLimitMiddleware(limiter))
	}
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(contextKeyAPIKey))
	})
	return router
}

func request(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	router := authRouter(nil)
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"valid token keyed by api_key", "Bearer " + validToken(), http.StatusOK, "key-1"},
		{"valid token keyed by subject", "Bearer " + signToken(testSecret, jwt.MapClaims{"sub": "teacher-2", "iss": "copycheck", "exp": future}), http.StatusOK, "teacher-2"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Token " + validToken(), http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + signToken("other", jwt.MapClaims{"iss": "copycheck", "exp": future}), http.StatusUnauthorized, ""},
		{"expired", "Bearer " + signToken(testSecret, jwt.MapClaims{"iss": "copycheck", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized, ""},
		{"no expiry", "Bearer " + signToken(testSecret, jwt.MapClaims{"iss": "copycheck"}), http.StatusUnauthorized, ""},
		{"wrong issuer", "Bearer " + signToken(testSecret, jwt.MapClaims{"iss": "someone-else", "exp": future}), http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(router, tt.header)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	router := authRouter(NewRateLimiter(0.001, 2))
	header := "Bearer " + validToken()

	assert.Equal(t, http.StatusOK, request(router, header).Code)
	assert.Equal(t, http.StatusOK, request(router, header).Code)

	w := request(router, header)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")

	other := "Bearer " + signToken(testSecret, jwt.MapClaims{"api_key": "key-2", "iss": "copycheck", "exp": time.Now().Add(time.Hour).Unix()})
	assert.Equal(t, http.StatusOK, request(router, other).Code)
}

func TestRateLimiter_ForgetsIdleKeys(t *testing.T) {
	limiter := NewRateLimiter(10, 20)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	limiter.GetLimiter("a")
	limiter.GetLimiter("b")
	assert.Equal(t, 2, limiter.Len())

	same := limiter.GetLimiter("a")
	assert.Same(t, same, limiter.GetLimiter("a"))

	now = now.Add(2 * time.Hour)
	limiter.GetLimiter("c")
	assert.Equal(t, 1, limiter.Len())
}

func TestErrorHandlerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlerMiddleware())
	router.GET("/fail", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
	})
	router.GET("/handled", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict", Code: "CONFLICT"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/handled", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}
