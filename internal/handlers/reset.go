package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/attendance/internal/logging"
	"github.com/Skotchmaster/attendance/internal/service"
)

type ResetHandler struct {
	Recovery *service.RecoveryService
	Resets   *service.PasswordResetService
}

const genericRecoveryMessage = "If the email or phone is registered, you will receive a recovery link."

func (h *ResetHandler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "forgot_password")

	var req struct {
		Identifier string `json:"identifier" form:"identifier"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("forgot_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Recovery.RequestReset(ctx, req.Identifier)
	if err != nil {
		return httpError(err)
	}

	// Known and unknown identifiers get the same body; channels stay server-side.
	l.Info("forgot_password_done", "channels", len(res.Channels))
	return c.JSON(http.StatusOK, echo.Map{"message": genericRecoveryMessage})
}

// CheckResetToken backs the reset page: it tells the client whether the
// link is still usable before the user types a new password.
func (h *ResetHandler) CheckResetToken(c echo.Context) error {
	u, err := h.Resets.UserForToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"username": u.Username})
}

func (h *ResetHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reset_password")

	var req struct {
		Password        string `json:"password"         form:"password"`
		ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("reset_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.Password) < service.MinResetPasswordLength {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"field": "password", "error": "must be at least 6 characters"})
	}
	if req.Password != req.ConfirmPassword {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"field": "confirm_password", "error": "does not match"})
	}

	if err := h.Resets.ConsumeAndReset(ctx, c.Param("token"), req.Password); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
