package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/attendance/internal/models"
)

const (
	userKey    = "auth.user"
	sessionKey = "auth.session"
	apiKeyKey  = "auth.api_key"
)

// User returns the user attached by Sessions, or nil.
func User(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

func Session(c echo.Context) *models.Session {
	s, _ := c.Get(sessionKey).(*models.Session)
	return s
}

func APIKey(c echo.Context) *models.APIKey {
	k, _ := c.Get(apiKeyKey).(*models.APIKey)
	return k
}

func SetUser(c echo.Context, u *models.User) {
	c.Set(userKey, u)
}
