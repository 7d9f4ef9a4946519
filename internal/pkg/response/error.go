package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Error sends a JSON error response.
// AppErrors are reported with their own status and message; anything else is
// logged and reported as a generic 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= http.StatusInternalServerError {
			slog.ErrorContext(c.Request.Context(), "request failed",
				slog.String("path", c.FullPath()), slog.Any("error", err))
		}
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	slog.ErrorContext(c.Request.Context(), "unhandled error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.Any("error", err),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// BadRequest reports a binding or validation failure.
func BadRequest(c *gin.Context, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
