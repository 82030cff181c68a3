package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/attendance/internal/logging"
	"github.com/Skotchmaster/attendance/internal/models"
	"github.com/Skotchmaster/attendance/internal/service"
)

// APIHandler serves bearer-authenticated integration endpoints.
type APIHandler struct {
	Lookup *service.IdentityLookup
	Auth   *service.AuthService
}

func (h *APIHandler) GetUser(c echo.Context) error {
	u, err := h.Lookup.ByEmailOrPhone(c.Request().Context(), c.Param("login"))
	if err != nil {
		return httpError(err)
	}
	if u == nil {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return c.JSON(http.StatusOK, u)
}

// CreateUser provisions a regular account for an integration. The role in
// the body is ignored.
func (h *APIHandler) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api_user_create")

	var req provisionRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("api_user_create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Auth.Provision(ctx, req.input(models.RoleUser))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user_id": u.ID, "user": u})
}
