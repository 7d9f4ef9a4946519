package api

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/stretchr/testify/assert"
)

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitOrigins(" https://a.example, ,https://b.example "))
	assert.Nil(t, splitOrigins(""))
}

func TestCorsConfig(t *testing.T) {
	prod := corsConfig(true, "https://stays.example")
	assert.Equal(t, []string{"https://stays.example"}, prod.AllowOrigins)

	dev := corsConfig(false, "https://stays.example")
	assert.Contains(t, dev.AllowOrigins, "http://localhost:8081")
	assert.Contains(t, dev.AllowHeaders, "Authorization")
}

func TestNewRouter_Wiring(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(Config{JWTManager: auth.NewJWTManager("test-secret", time.Minute)})

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{"health", http.MethodGet, "/healthz", http.StatusOK},
		{"me requires token", http.MethodGet, "/v1/me", http.StatusUnauthorized},
		{"users require token", http.MethodGet, "/v1/users", http.StatusUnauthorized},
		{"reservations require token", http.MethodGet, "/v1/reservations", http.StatusUnauthorized},
		{"profit requires token", http.MethodGet, "/v1/owners/me/profit", http.StatusUnauthorized},
		{"unit writes require token", http.MethodPost, "/v1/units", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/v1/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestInvalidatingPaths_CoverUnitAffectingWrites(t *testing.T) {
	writes := []string{
		"/v1/units/7f1a0c1e-2b7d-4a53-9d0e-3c8f5b9a6e21",
		"/v1/bookings",
		"/v1/reservations/7f1a0c1e-2b7d-4a53-9d0e-3c8f5b9a6e21",
		"/v1/reviews/7f1a0c1e-2b7d-4a53-9d0e-3c8f5b9a6e21",
		"/v1/users/7f1a0c1e-2b7d-4a53-9d0e-3c8f5b9a6e21",
	}
	for _, path := range writes {
		covered := slices.ContainsFunc(invalidatingPaths, func(prefix string) bool {
			return strings.HasPrefix(path, prefix)
		})
		assert.True(t, covered, path)
	}
}
