package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stay-booking-backend/internal/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	review.Service
	filter  review.Filter
	created review.CreateRequest
	err     error
}

func (s *stubService) List(_ context.Context, filter review.Filter) ([]*review.Review, int, error) {
	s.filter = filter
	return []*review.Review{{ID: "r1", UnitID: filter.UnitID, UserID: "u1", UserName: "Ana", Rating: 5}}, 1, nil
}

func (s *stubService) Create(_ context.Context, p auth.Principal, req review.CreateRequest) (*review.Review, error) {
	s.created = req
	if s.err != nil {
		return nil, s.err
	}
	return &review.Review{ID: "r1", UnitID: req.UnitID, UserID: p.UserID, Rating: req.Rating}, nil
}

const unitID = "7f1a0c1e-2b7d-4a53-9d0e-3c8f5b9a6e21"

func setupRouter(svc review.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set("userID", "user-1")
		auth.SetRole(c, auth.RoleGuest)
		c.Next()
	}
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), fakeAuth)
	return r
}

func TestHandler_ListForUnit(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/units/"+unitID+"/reviews?min_rating=4&sort_by=rating&sort_order=asc", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, unitID, svc.filter.UnitID)
	assert.Equal(t, 4, svc.filter.MinRating)
	assert.Equal(t, "ASC", svc.filter.SortOrder)

	var resp response.PageResponse[ReviewResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Ana", resp.Items[0].User.Name)
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		authed   bool
		svcErr   error
		wantCode int
	}{
		{"valid", `{"rating":4,"comment":"nice"}`, true, nil, http.StatusCreated},
		{"anonymous", `{"rating":4}`, false, nil, http.StatusUnauthorized},
		{"rating out of range", `{"rating":9}`, true, nil, http.StatusBadRequest},
		{"duplicate", `{"rating":4}`, true, review.ErrAlreadyReviewed, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&stubService{err: tt.svcErr})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/units/"+unitID+"/reviews", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.authed {
				req.Header.Set("Authorization", "Bearer test")
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}
