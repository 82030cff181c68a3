package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/attendance/internal/logging"
	authmw "github.com/Skotchmaster/attendance/internal/middleware/auth"
	"github.com/Skotchmaster/attendance/internal/service"
)

// APIKeyHandler serves the admin pages for integration keys. Routes are
// expected behind authmw.AdminOnly.
type APIKeyHandler struct {
	Svc *service.APIKeyService
}

func (h *APIKeyHandler) List(c echo.Context) error {
	keys, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, keys)
}

func (h *APIKeyHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api_key_create")

	var req struct {
		Name string `json:"name" form:"name"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("api_key_create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	rec, key, err := h.Svc.Create(ctx, req.Name, authmw.User(c).ID)
	if err != nil {
		return httpError(err)
	}
	// The plaintext key is returned here and never again.
	return c.JSON(http.StatusCreated, echo.Map{"api_key": rec, "key": key})
}

func (h *APIKeyHandler) Toggle(c echo.Context) error {
	k, err := h.Svc.ToggleActive(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, k)
}

func (h *APIKeyHandler) Delete(c echo.Context) error {
	ok, err := h.Svc.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return c.NoContent(http.StatusNoContent)
}
