// Package app wires repositories, services and notification senders from
// configuration. Both the server and the admin CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/Skotchmaster/attendance/internal/config"
	"github.com/Skotchmaster/attendance/internal/hash"
	"github.com/Skotchmaster/attendance/internal/metrics"
	"github.com/Skotchmaster/attendance/internal/models"
	"github.com/Skotchmaster/attendance/internal/notify"
	"github.com/Skotchmaster/attendance/internal/repo"
	"github.com/Skotchmaster/attendance/internal/service"
	"github.com/Skotchmaster/attendance/pkg/db"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB

	Lookup   *service.IdentityLookup
	Sessions *service.SessionManager
	Resets   *service.PasswordResetService
	APIKeys  *service.APIKeyService
	Auth     *service.AuthService
	Recovery *service.RecoveryService

	closers []func() error
}

// Open connects to the database, migrates the schema and builds the
// services. reg may be nil, in which case no metrics are recorded.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, gdb, models.All()...); err != nil {
		_ = db.Close(gdb)
		return nil, err
	}

	a := New(cfg, gdb, logger, reg)
	a.closers = append(a.closers, func() error { return db.Close(gdb) })
	return a, nil
}

func New(cfg *config.Config, gdb *gorm.DB, logger *slog.Logger, reg prometheus.Registerer) *App {
	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	r := repo.New(gdb)
	hasher := hash.New(cfg.PBKDF2Iterations)

	a := &App{Config: cfg, DB: gdb}
	a.Lookup = &service.IdentityLookup{Users: r}
	a.Sessions = &service.SessionManager{Sessions: r, Metrics: m}
	a.Resets = &service.PasswordResetService{Tokens: r, Users: r, Hasher: hasher, Sessions: a.Sessions, Metrics: m}
	a.APIKeys = &service.APIKeyService{Keys: r, Metrics: m}
	a.Auth = &service.AuthService{Users: r, Lookup: a.Lookup, Sessions: a.Sessions, Hasher: hasher, Metrics: m}

	whatsapp, email := a.senders(logger)
	a.Recovery = &service.RecoveryService{
		Lookup:    a.Lookup,
		Resets:    a.Resets,
		WhatsApp:  whatsapp,
		Email:     email,
		PublicURL: cfg.PublicURL,
	}
	return a
}

// senders publishes to Kafka when brokers are configured and logs the
// messages otherwise.
func (a *App) senders(logger *slog.Logger) (notify.Sender, notify.Sender) {
	if len(a.Config.KafkaBrokers) == 0 {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty, reset links are only logged at debug level")
		return &notify.LogSender{Channel: notify.WhatsApp, Logger: logger},
			&notify.LogSender{Channel: notify.Email, Logger: logger}
	}

	wa := notify.NewKafkaSender(a.Config.KafkaBrokers, a.Config.KafkaWhatsAppTopic, notify.WhatsApp)
	em := notify.NewKafkaSender(a.Config.KafkaBrokers, a.Config.KafkaEmailTopic, notify.Email)
	a.closers = append(a.closers, wa.Close, em.Close)
	return wa, em
}

// Close waits for pending API-key audit writes, then releases senders and
// the database.
func (a *App) Close() error {
	a.APIKeys.Wait()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close app: %w", err)
	}
	return nil
}
