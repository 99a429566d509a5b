package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"civic_feed/internal/pkg/config"
	"civic_feed/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupSecret(t *testing.T) {
	prev := config.GlobalConfig.JWT
	config.GlobalConfig.JWT.Secret = "0123456789abcdef0123456789abcdef"
	config.GlobalConfig.JWT.Expire = 1
	t.Cleanup(func() { config.GlobalConfig.JWT = prev })
}

func whoami(c *gin.Context) {
	c.String(http.StatusOK, GetUserID(c))
}

func perform(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	setupSecret(t)
	r := gin.New()
	r.GET("/me", AuthMiddleware(), whoami)

	token, _, err := utils.GenerateToken("user-1", "citizen")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"bad format", "Token abc", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer not-a-jwt", http.StatusUnauthorized, ""},
		{"valid token", "Bearer " + token, http.StatusOK, "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, tt.header)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	setupSecret(t)
	r := gin.New()
	r.GET("/me", OptionalAuthMiddleware(), whoami)

	token, _, err := utils.GenerateToken("user-2", "official")
	require.NoError(t, err)

	t.Run("anonymous", func(t *testing.T) {
		w := perform(r, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("invalid token falls back to anonymous", func(t *testing.T) {
		w := perform(r, "Bearer garbage")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("valid token", func(t *testing.T) {
		w := perform(r, "Bearer "+token)
		assert.Equal(t, "user-2", w.Body.String())
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	setupSecret(t)

	t.Run("anonymous callers share the ip bucket", func(t *testing.T) {
		r := gin.New()
		r.GET("/me", RateLimitMiddleware(NewRateLimiter(0.001, 1)), whoami)

		assert.Equal(t, http.StatusOK, perform(r, "").Code)
		w := perform(r, "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("users behind one ip get their own bucket", func(t *testing.T) {
		r := gin.New()
		r.GET("/me", AuthMiddleware(), RateLimitMiddleware(NewRateLimiter(0.001, 1)), whoami)

		alice, _, err := utils.GenerateToken("alice", "citizen")
		require.NoError(t, err)
		bob, _, err := utils.GenerateToken("bob", "citizen")
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, perform(r, "Bearer "+alice).Code)
		assert.Equal(t, http.StatusOK, perform(r, "Bearer "+bob).Code)
		assert.Equal(t, http.StatusTooManyRequests, perform(r, "Bearer "+alice).Code)
	})
}

func TestRateLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Reserve("user:a")
	l.Reserve("user:b")
	assert.Equal(t, 2, l.size())

	now = now.Add(limiterIdleTTL + time.Second)
	ok, _ := l.Reserve("user:c")
	assert.True(t, ok)
	assert.Equal(t, 1, l.size())
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware(), LoggerMiddleware(nil))
	r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextTraceID)) })

	t.Run("propagates incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(TraceHeader, "trace-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "trace-123", w.Body.String())
		assert.Equal(t, "trace-123", w.Header().Get(TraceHeader))
	})

	t.Run("replaces oversized ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(TraceHeader, strings.Repeat("x", 100))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Len(t, w.Header().Get(TraceHeader), 36)
	})

	t.Run("generates one when absent", func(t *testing.T) {
		w := perform(r, "")
		assert.NotEmpty(t, w.Header().Get(TraceHeader))
		assert.Equal(t, w.Header().Get(TraceHeader), w.Body.String())
	})
}
