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
	"github.com/nekogravitycat/stay-booking-backend/internal/booking"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	booking.Service
	created booking.CreateRequest
	updated booking.UpdateRequest
	err     error
}

func (s *stubService) Create(_ context.Context, req booking.CreateRequest) (*booking.Booking, error) {
	s.created = req
	if s.err != nil {
		return nil, s.err
	}
	total := 240.0
	return &booking.Booking{
		ID: "b1", UnitID: req.UnitID, UnitName: "Loft",
		CheckIn: req.CheckIn, CheckOut: req.CheckOut,
		Guests: req.Guests, TotalPrice: &total, Status: booking.StatusPending,
	}, nil
}

func (s *stubService) Update(_ context.Context, _ auth.Principal, id string, req booking.UpdateRequest) (*booking.Booking, error) {
	s.updated = req
	if s.err != nil {
		return nil, s.err
	}
	return &booking.Booking{ID: id, Status: *req.Status}, nil
}

const unitID = "7f1a0c1e-2b7d-4a53-9d0e-3c8f5b9a6e21"

func setupRouter(svc booking.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	request.RegisterValidators()
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		c.Set("userID", "owner-1")
		auth.SetRole(c, auth.RoleOwner)
		c.Next()
	}
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), fakeAuth)
	return r
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBooking(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	w := send(r, http.MethodPost, "/v1/bookings", `{
		"unit_id": "`+unitID+`",
		"check_in": "2025-07-05",
		"check_out": "2025-07-08",
		"guest_name": "Ana Pop",
		"guest_email": "ana@example.com",
		"guests": 2
	}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2025-07-05", request.FormatDate(svc.created.CheckIn))

	var body BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Nights)
	assert.Equal(t, "PENDING", body.Status)
	assert.Equal(t, "Loft", body.Unit.Name)
}

func TestCreateBookingValidation(t *testing.T) {
	r := setupRouter(&stubService{})

	tests := []struct {
		name string
		body string
	}{
		{"bad date", `{"unit_id":"` + unitID + `","check_in":"05-07-2025","check_out":"2025-07-08","guest_name":"A","guest_email":"a@b.co","guests":1}`},
		{"bad email", `{"unit_id":"` + unitID + `","check_in":"2025-07-05","check_out":"2025-07-08","guest_name":"A","guest_email":"nope","guests":1}`},
		{"no guests", `{"unit_id":"` + unitID + `","check_in":"2025-07-05","check_out":"2025-07-08","guest_name":"A","guest_email":"a@b.co","guests":0}`},
		{"bad unit id", `{"unit_id":"x","check_in":"2025-07-05","check_out":"2025-07-08","guest_name":"A","guest_email":"a@b.co","guests":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(r, http.MethodPost, "/v1/bookings", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateBookingConflict(t *testing.T) {
	r := setupRouter(&stubService{err: booking.ErrDateConflict})

	w := send(r, http.MethodPost, "/v1/bookings", `{"unit_id":"`+unitID+`","check_in":"2025-07-04","check_out":"2025-07-08","guest_name":"A","guest_email":"a@b.co","guests":1}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "not available")
}

func TestUpdateBookingStatus(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	w := send(r, http.MethodPatch, "/v1/bookings/"+unitID, `{"status":"CONFIRMED"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.updated.Status)
	assert.Equal(t, booking.StatusConfirmed, *svc.updated.Status)

	w = send(r, http.MethodPatch, "/v1/bookings/"+unitID, `{"status":"confirmed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
