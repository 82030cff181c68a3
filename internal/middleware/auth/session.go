package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/attendance/internal/logging"
	"github.com/Skotchmaster/attendance/internal/models"
)

type SessionValidator interface {
	Validate(ctx context.Context, token string) (*models.Session, *models.User, error)
}

// Sessions resolves the session cookie on every request. A valid session
// re-issues the cookie with the current expiry; an invalid one clears it.
// Requests without a valid session pass through anonymously.
func Sessions(v SessionValidator, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			sess, user, err := v.Validate(ctx, cookie.Value)
			if err != nil {
				logging.FromContext(ctx).Error("session_error", "status", 500, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}
			if sess == nil {
				c.SetCookie(DeleteCookie(secure))
				return next(c)
			}

			c.SetCookie(CreateCookie(cookie.Value, sess.ExpiresAt, secure))
			c.Set(sessionKey, sess)
			SetUser(c, user)

			l := logging.FromContext(ctx).With("user_id", user.ID)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
			return next(c)
		}
	}
}

func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if User(c) == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return next(c)
	}
}

func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := User(c)
		if u == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		if !u.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		return next(c)
	}
}
