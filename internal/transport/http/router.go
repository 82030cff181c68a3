package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Skotchmaster/attendance/internal/handlers"
	authmw "github.com/Skotchmaster/attendance/internal/middleware/auth"
	"github.com/Skotchmaster/attendance/internal/middleware/csrf"
)

type Deps struct {
	AuthHandler   *handlers.AuthHandler
	ResetHandler  *handlers.ResetHandler
	APIKeyHandler *handlers.APIKeyHandler
	APIHandler    *handlers.APIHandler
	UserHandler   *handlers.UserAdminHandler

	Sessions authmw.SessionValidator
	Keys     authmw.KeyValidator
	Gatherer prometheus.Gatherer
	// Secure marks cookies Secure; set in production.
	Secure bool
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api", authmw.Bearer(d.Keys))
	api.GET("/users/:login", d.APIHandler.GetUser)
	api.POST("/users", d.APIHandler.CreateUser)

	web := e.Group("",
		csrf.Middleware(csrf.Config{Secure: d.Secure}),
		authmw.Sessions(d.Sessions, d.Secure),
	)

	web.POST("/register", d.AuthHandler.Register)
	web.POST("/login", d.AuthHandler.Login)
	web.POST("/logout", d.AuthHandler.Logout)
	web.POST("/forgot-password", d.ResetHandler.ForgotPassword)
	web.GET("/reset-password/:token", d.ResetHandler.CheckResetToken)
	web.POST("/reset-password/:token", d.ResetHandler.ResetPassword)

	private := web.Group("", authmw.RequireLogin)
	private.GET("/me", d.AuthHandler.Me)

	admin := web.Group("/admin", authmw.AdminOnly)
	admin.GET("/api-keys", d.APIKeyHandler.List)
	admin.POST("/api-keys", d.APIKeyHandler.Create)
	admin.POST("/api-keys/:id/toggle", d.APIKeyHandler.Toggle)
	admin.DELETE("/api-keys/:id", d.APIKeyHandler.Delete)

	admin.POST("/users", d.UserHandler.Create)
	admin.POST("/users/:id/password", d.UserHandler.UpdatePassword)
}
