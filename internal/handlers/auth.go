package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/attendance/internal/logging"
	authmw "github.com/Skotchmaster/attendance/internal/middleware/auth"
	"github.com/Skotchmaster/attendance/internal/service"
)

type AuthHandler struct {
	Svc *service.AuthService
	// Secure sets the Secure flag on session cookies.
	Secure bool
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Username        string `json:"username"         form:"username"`
		CompanyName     string `json:"company_name"     form:"company_name"`
		Phone           string `json:"phone"            form:"phone"`
		Email           string `json:"email"            form:"email"`
		Password        string `json:"password"         form:"password"`
		ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, service.RegisterInput{
		Username:        req.Username,
		CompanyName:     req.CompanyName,
		Phone:           req.Phone,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(authmw.CreateCookie(res.Token, res.ExpiresAt, h.Secure))
	return c.JSON(http.StatusCreated, res.User)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Login    string `json:"login"    form:"login"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Login == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "login and password are required")
	}

	res, err := h.Svc.Login(ctx, req.Login, req.Password)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(authmw.CreateCookie(res.Token, res.ExpiresAt, h.Secure))
	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"user":     res.User,
		"is_admin": res.User.IsAdmin(),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	c.SetCookie(authmw.DeleteCookie(h.Secure))

	if s := authmw.Session(c); s != nil {
		if err := h.Svc.Logout(ctx, s.ID); err != nil {
			l.Error("logout_failed", "status", 500, "reason", "cannot delete session", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, authmw.User(c))
}
