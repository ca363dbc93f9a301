package utils

import (
	"errors"
	"net/http"
	"strconv"

	"convoyage-platform/internal/models"

	"github.com/labstack/echo/v4"
)

// RespondWithError sends a JSON error body with the given status.
func RespondWithError(c echo.Context, status int, message string) error {
	return c.JSON(status, models.ErrorResponse{Message: message})
}

// RespondWithJSON sends a JSON payload with the given status.
func RespondWithJSON(c echo.Context, status int, payload interface{}) error {
	return c.JSON(status, payload)
}

// HandleServiceError maps well-known service errors to HTTP statuses.
// Anything unrecognized is logged and reported as a 500.
func HandleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return RespondWithError(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, models.ErrConflict):
		return RespondWithError(c, http.StatusConflict, "Resource already exists")
	case errors.Is(err, models.ErrForbidden):
		return RespondWithError(c, http.StatusForbidden, "Operation not permitted")
	case errors.Is(err, models.ErrValidationFailed):
		return RespondWithError(c, http.StatusUnprocessableEntity, "Price must be a non-negative decimal")
	case errors.Is(err, models.ErrParse):
		return RespondWithError(c, http.StatusBadRequest, "Malformed decimal value")
	case errors.Is(err, models.ErrNoGridForVehicle):
		return RespondWithError(c, http.StatusUnprocessableEntity, "No price grid configured for this vehicle type")
	case errors.Is(err, models.ErrNoRangeMatch):
		return RespondWithError(c, http.StatusUnprocessableEntity, "No distance range matches the requested distance")
	case errors.Is(err, models.ErrQuoteNotPending):
		return RespondWithError(c, http.StatusConflict, "Quote is no longer pending")
	case errors.Is(err, models.ErrInvalidTransition):
		return RespondWithError(c, http.StatusConflict, "Mission status transition not allowed")
	case errors.Is(err, models.ErrPersistFailed):
		c.Logger().Error("persist error: ", err)
		return RespondWithError(c, http.StatusServiceUnavailable, "Storage is temporarily unavailable, nothing was saved")
	default:
		c.Logger().Error("unexpected service error: ", err)
		return RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// ExtractUserInfo pulls the authenticated user's ID and role out of the
// echo context, where the JWT middleware placed them.
func ExtractUserInfo(c echo.Context) (userID string, role string, err error) {
	userID, _ = c.Get("userID").(string)
	role, _ = c.Get("userRole").(string)
	if userID == "" {
		return "", "", RespondWithError(c, http.StatusUnauthorized, "Missing authentication")
	}
	return userID, role, nil
}

// GetPageLimit reads pagination query parameters with sane bounds.
func GetPageLimit(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
