package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	user.Service
	registered string
	err        error
}

func (s *stubService) Register(_ context.Context, email, _, name string) (*user.User, error) {
	s.registered = email
	if s.err != nil {
		return nil, s.err
	}
	return &user.User{ID: "u1", Email: email, Name: name, Role: auth.RoleGuest, OwnerApplicationStatus: user.ApplicationNone}, nil
}

func (s *stubService) Login(_ context.Context, email, _ string) (*user.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &user.User{ID: "u1", Email: email, Role: auth.RoleOwner, Enabled: true}, nil
}

func (s *stubService) Delete(_ context.Context, _ auth.Principal, _ string) error {
	return s.err
}

func setupRouter(svc user.Service, jwt *auth.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	request.RegisterValidators()
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		c.Set("userID", "admin-1")
		auth.SetRole(c, auth.RoleAdmin)
		c.Next()
	}
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, jwt), fakeAuth, auth.RequireRole(auth.RoleAdmin))
	return r
}

func TestUserHandler_Register(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svcErr   error
		wantCode int
	}{
		{"valid", `{"email":"ana@example.com","password":"secret-pass","name":"Ana"}`, nil, http.StatusCreated},
		{"short password", `{"email":"ana@example.com","password":"short","name":"Ana"}`, nil, http.StatusBadRequest},
		{"blank name", `{"email":"ana@example.com","password":"secret-pass","name":"  "}`, nil, http.StatusBadRequest},
		{"duplicate", `{"email":"ana@example.com","password":"secret-pass","name":"Ana"}`, user.ErrEmailAlreadyUsed, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&stubService{err: tt.svcErr}, auth.NewJWTManager("test-secret", time.Minute))
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestUserHandler_LoginIssuesToken(t *testing.T) {
	jwt := auth.NewJWTManager("test-secret", time.Minute)
	r := setupRouter(&stubService{}, jwt)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"secret-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := jwt.ParseAndValidate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, auth.RoleOwner, claims.Role)
}

func TestUserHandler_LoginRejected(t *testing.T) {
	r := setupRouter(&stubService{err: user.ErrNotConfirmed}, auth.NewJWTManager("test-secret", time.Minute))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"secret-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserHandler_ConfirmRequiresUUID(t *testing.T) {
	r := setupRouter(&stubService{}, auth.NewJWTManager("test-secret", time.Minute))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/confirm", strings.NewReader(`{"token":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_Delete(t *testing.T) {
	r := setupRouter(&stubService{}, auth.NewJWTManager("test-secret", time.Minute))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/users/7f1a0c1e-2b7d-4a53-9d0e-3c8f5b9a6e21", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
