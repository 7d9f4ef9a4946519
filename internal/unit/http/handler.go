package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/geo"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stay-booking-backend/internal/unit"
)

type UnitHandler struct {
	service unit.Service
}

func NewHandler(service unit.Service) *UnitHandler {
	return &UnitHandler{service: service}
}

func newUnitPage(units []*unit.Unit, page, pageSize, total int) response.PageResponse[UnitResponse] {
	items := make([]UnitResponse, len(units))
	for i, u := range units {
		items[i] = NewUnitResponse(u)
	}
	return response.NewPageResponse(items, page, pageSize, total)
}

// List retrieves a paginated list of units with optional filtering.
func (h *UnitHandler) List(c *gin.Context) {
	var req ListUnitsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	units, total, err := h.service.List(c.Request.Context(), req.toFilter())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, newUnitPage(units, req.Page, req.PageSize, total))
}

// Search lists units free for the requested dates.
func (h *UnitHandler) Search(c *gin.Context) {
	var req SearchUnitsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	checkIn, checkOut, err := req.parse()
	if err != nil {
		response.BadRequest(c, "invalid date", err)
		return
	}

	units, total, err := h.service.Search(c.Request.Context(), unit.SearchFilter{
		Filter:   req.toFilter(),
		CheckIn:  checkIn,
		CheckOut: checkOut,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, newUnitPage(units, req.Page, req.PageSize, total))
}

func (h *UnitHandler) Nearby(c *gin.Context) {
	var req NearbyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	hits, err := h.service.Nearby(c.Request.Context(), unit.NearbyQuery{
		Filter:   req.toFilter(),
		City:     req.City,
		RadiusKm: req.RadiusKm,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewNearbyResponse(req.City, req.RadiusKm, hits))
}

// AdvancedSearch combines proximity, guest count and date filters.
func (h *UnitHandler) AdvancedSearch(c *gin.Context) {
	var req AdvancedSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	checkIn, checkOut, err := req.parse()
	if err != nil {
		response.BadRequest(c, "invalid date", err)
		return
	}

	hits, err := h.service.AdvancedSearch(c.Request.Context(), unit.NearbyQuery{
		Filter:   req.toFilter(),
		City:     req.City,
		RadiusKm: req.RadiusKm,
		CheckIn:  checkIn,
		CheckOut: checkOut,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewNearbyResponse(req.City, req.RadiusKm, hits))
}

// Cities lists the city names accepted by proximity search.
func (h *UnitHandler) Cities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": geo.Cities()})
}

func (h *UnitHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid unit id", err)
		return
	}

	u, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewUnitResponse(u))
}

func (h *UnitHandler) Availability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid unit id", err)
		return
	}
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "check_in and check_out are required as YYYY-MM-DD", err)
		return
	}
	checkIn, _ := request.ParseDate(req.CheckIn)
	checkOut, _ := request.ParseDate(req.CheckOut)

	ok, err := h.service.Availability(c.Request.Context(), uri.ID, checkIn, checkOut)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, AvailabilityResponse{
		UnitID:    uri.ID,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Available: ok,
	})
}

// Create adds a new unit owned by the caller.
func (h *UnitHandler) Create(c *gin.Context) {
	var body CreateUnitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	u, err := h.service.Create(c.Request.Context(), auth.GetPrincipal(c), unit.CreateUnitRequest{
		OwnerID:       body.OwnerID,
		Name:          body.Name,
		Description:   body.Description,
		Location:      body.Location,
		County:        body.County,
		Latitude:      body.Latitude,
		Longitude:     body.Longitude,
		PricePerNight: body.PricePerNight,
		Capacity:      body.Capacity,
		Available:     body.Available,
		Type:          body.Type,
		Images:        body.Images,
		Amenities:     body.Amenities,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewUnitResponse(u))
}

func (h *UnitHandler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid unit id", err)
		return
	}
	var body UpdateUnitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	u, err := h.service.Update(c.Request.Context(), auth.GetPrincipal(c), uri.ID, unit.UpdateUnitRequest{
		Name:          body.Name,
		Description:   body.Description,
		Location:      body.Location,
		County:        body.County,
		Latitude:      body.Latitude,
		Longitude:     body.Longitude,
		ClearCoords:   body.ClearCoords,
		PricePerNight: body.PricePerNight,
		Capacity:      body.Capacity,
		Available:     body.Available,
		Type:          body.Type,
		Images:        body.Images,
		Amenities:     body.Amenities,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewUnitResponse(u))
}

func (h *UnitHandler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid unit id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), auth.GetPrincipal(c), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
