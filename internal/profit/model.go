package profit

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var (
	ErrInvalidMonthsBack  = apperror.InvalidArgument("months_back must be zero or positive")
	ErrInvalidMonthsAhead = apperror.InvalidArgument("months_ahead must be positive")
	ErrUnitNotFound       = apperror.NotFound("unit not found")
	ErrOwnerNotFound      = apperror.NotFound("owner not found")
	ErrPermissionDenied   = apperror.New(http.StatusForbidden, "permission denied")
)

// MonthLayout labels calendar months in series (e.g. "2025-03").
const MonthLayout = "2006-01"

// Booking statuses that count as realized revenue.
var RevenueStatuses = []string{"CONFIRMED", "COMPLETED"}

// Record is the slice of a booking that revenue is computed from.
type Record struct {
	CheckIn    time.Time
	TotalPrice *float64
	Status     string
}

// MonthAmount is the summed revenue of one calendar month.
type MonthAmount struct {
	Month  string
	Amount float64
}

// Forecast combines the history a trend line was fitted on with its extrapolation.
type Forecast struct {
	History     []MonthAmount
	Predictions []MonthAmount
}
