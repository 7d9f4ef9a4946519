package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := Key("resp:", "/v1/units", url.Values{"county": {"Cluj"}, "page": {"2"}})
	b := Key("resp:", "/v1/units", url.Values{"page": {"2"}, "county": {"Cluj"}})
	assert.Equal(t, a, b, "parameter order must not matter")
	assert.True(t, strings.HasPrefix(a, "resp:"))
	assert.Len(t, a, len("resp:")+64)

	multi1 := Key("resp:", "/v1/units", url.Values{"type": {"villa", "apartment"}})
	multi2 := Key("resp:", "/v1/units", url.Values{"type": {"apartment", "villa"}})
	assert.Equal(t, multi1, multi2)

	assert.NotEqual(t, a, Key("resp:", "/v1/units", url.Values{"county": {"Cluj"}, "page": {"3"}}))
	assert.NotEqual(t, a, Key("resp:", "/v1/units/search", url.Values{"county": {"Cluj"}, "page": {"2"}}))
}

func TestHasPrefix(t *testing.T) {
	prefixes := []string{"/v1/units", "/v1/bookings"}
	assert.True(t, hasPrefix("/v1/units/abc", prefixes))
	assert.True(t, hasPrefix("/v1/bookings", prefixes))
	assert.False(t, hasPrefix("/v1/users", prefixes))
}

func TestWithoutRedisEverythingPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rc := NewResponseCache(nil, time.Minute, "/v1/units")
	r := gin.New()
	r.Use(rc.Middleware(), rc.InvalidateOnWrite("/v1/units"))
	r.Use(RateLimit(nil, RateLimitConfig{Capacity: 1, RefillPerSec: 1}))

	calls := 0
	r.GET("/v1/units", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"items": []string{}})
	})
	r.POST("/v1/units", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/units", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get(headerCache))
	}
	assert.Equal(t, 3, calls)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/units", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	assert.NoError(t, rc.Invalidate(context.Background()))
}

func TestNewRedisClient_EmptyAddr(t *testing.T) {
	assert.Nil(t, NewRedisClient(context.Background(), "", "", 0))
}
