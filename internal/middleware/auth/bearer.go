package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/attendance/internal/logging"
	"github.com/Skotchmaster/attendance/internal/models"
)

type KeyValidator interface {
	Validate(ctx context.Context, key string) (*models.APIKey, error)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Bearer authenticates machine clients by API key. Every failure is the
// same 401 so callers cannot tell a missing key from a revoked one.
func Bearer(v KeyValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "api_key")

			key, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				l.Warn("api_auth_failed", "status", 401, "reason", "missing or malformed header")
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}

			k, err := v.Validate(ctx, key)
			if err != nil {
				l.Error("api_auth_error", "status", 500, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}
			if k == nil {
				l.Warn("api_auth_failed", "status", 401, "reason", "invalid key")
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}

			c.Set(apiKeyKey, k)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l.With("key_id", k.ID))))
			return next(c)
		}
	}
}
