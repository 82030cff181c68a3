package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/attendance/internal/app"
	"github.com/Skotchmaster/attendance/internal/config"
	"github.com/Skotchmaster/attendance/internal/handlers"
	"github.com/Skotchmaster/attendance/internal/logging"
	httpserver "github.com/Skotchmaster/attendance/internal/transport/http"
	loggingmw "github.com/Skotchmaster/attendance/pkg/middleware/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	a, err := app.Open(initCtx, cfg, logger, reg)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:   &handlers.AuthHandler{Svc: a.Auth, Secure: cfg.Production()},
		ResetHandler:  &handlers.ResetHandler{Recovery: a.Recovery, Resets: a.Resets},
		APIKeyHandler: &handlers.APIKeyHandler{Svc: a.APIKeys},
		APIHandler:    &handlers.APIHandler{Lookup: a.Lookup, Auth: a.Auth},
		UserHandler:   &handlers.UserAdminHandler{Svc: a.Auth},
		Sessions:      a.Sessions,
		Keys:          a.APIKeys,
		Gatherer:      reg,
		Secure:        cfg.Production(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("server_started", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_error", "error", err)
	}
	if err := a.Close(); err != nil {
		logger.Error("app_close_error", "error", err)
	}
	logger.Info("server_stopped")
}
