package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/attendance/internal/logging"
	"github.com/Skotchmaster/attendance/internal/models"
	"github.com/Skotchmaster/attendance/internal/service"
)

type provisionRequest struct {
	Email       string `json:"email"        form:"email"`
	Phone       string `json:"phone"        form:"phone"`
	Username    string `json:"username"     form:"username"`
	CompanyName string `json:"company_name" form:"company_name"`
	Password    string `json:"password"     form:"password"`
	Role        string `json:"role"         form:"role"`
}

func (r *provisionRequest) input(role models.Role) service.ProvisionInput {
	return service.ProvisionInput{
		Email:       r.Email,
		Phone:       r.Phone,
		Username:    r.Username,
		CompanyName: r.CompanyName,
		Password:    r.Password,
		Role:        role,
	}
}

// UserAdminHandler serves account management for admins. Routes are
// expected behind authmw.AdminOnly.
type UserAdminHandler struct {
	Svc *service.AuthService
}

func (h *UserAdminHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_user_create")

	var req provisionRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("admin_user_create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	role := models.RoleUser
	if req.Role == string(models.RoleAdmin) {
		role = models.RoleAdmin
	}
	u, err := h.Svc.Provision(ctx, req.input(role))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *UserAdminHandler) UpdatePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_user_password")

	var req struct {
		Password        string `json:"password"         form:"password"`
		ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("admin_user_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.UpdatePassword(ctx, c.Param("id"), req.Password, req.ConfirmPassword); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
