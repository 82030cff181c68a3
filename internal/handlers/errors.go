package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/attendance/internal/service"
)

// httpError maps service errors to responses. Authentication failures
// carry a fixed message so the response never says which check failed.
func httpError(err error) *echo.HTTPError {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"field": ve.Field, "error": ve.Message})
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid login or password")
	case errors.Is(err, service.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrDeliveryFailed):
		return echo.NewHTTPError(http.StatusInternalServerError, "could not send the recovery link, try again")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
