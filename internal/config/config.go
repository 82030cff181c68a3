package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/attendance/internal/hash"
	pkgcfg "github.com/Skotchmaster/attendance/pkg/config"
)

type Config struct {
	AppEnv   string
	Port     int
	LogLevel string

	DBDriver    string
	DatabaseURL string

	// PublicURL is the origin used to build password-reset links.
	PublicURL string

	KafkaBrokers       []string
	KafkaWhatsAppTopic string
	KafkaEmailTopic    string

	PBKDF2Iterations int
}

func (c *Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv:   pkgcfg.EnvDefault("APP_ENV", "development"),
		Port:     pkgcfg.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel: pkgcfg.EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    pkgcfg.EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL: pkgcfg.EnvDefault("DATABASE_URL", ""),

		PublicURL: strings.TrimRight(pkgcfg.EnvDefault("PUBLIC_URL", "http://localhost:8080"), "/"),

		KafkaBrokers:       pkgcfg.CSV(pkgcfg.EnvDefault("KAFKA_BROKERS", "")),
		KafkaWhatsAppTopic: pkgcfg.EnvDefault("KAFKA_WHATSAPP_TOPIC", "notify.whatsapp"),
		KafkaEmailTopic:    pkgcfg.EnvDefault("KAFKA_EMAIL_TOPIC", "notify.email"),

		PBKDF2Iterations: pkgcfg.EnvIntDefault("PBKDF2_ITERATIONS", hash.DefaultIterations),
	}

	if err := pkgcfg.Required(cfg.DatabaseURL, "DATABASE_URL"); err != nil {
		return nil, err
	}
	if cfg.PBKDF2Iterations <= 0 {
		return nil, fmt.Errorf("PBKDF2_ITERATIONS must be positive, got %d", cfg.PBKDF2Iterations)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT out of range: %d", cfg.Port)
	}

	return cfg, nil
}
