// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds everything the server needs at startup.
type Config struct {
	App       AppConfig
	Statutory StatutoryConfig
}

// AppConfig holds application configuration.
type AppConfig struct {
	Port     int
	DBPath   string
	LogLevel slog.Level
}

// StatutoryConfig holds the flat statutory deduction amounts applied per
// employee when the statutory toggle is enabled.
type StatutoryConfig struct {
	Tax             decimal.Decimal
	SocialSecurity  decimal.Decimal
	HealthInsurance decimal.Decimal
}

// Load reads configuration from the environment. A missing .env file is
// fine; explicit environment variables always win.
func Load() (*Config, error) {
	godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Port:     port,
			DBPath:   getEnv("DB_PATH", "payroll.db"),
			LogLevel: parseLogLevel(getEnv("LOG_LEVEL", "info")),
		},
		Statutory: StatutoryConfig{
			Tax:             getDecimal("STATUTORY_TAX", decimal.Zero),
			SocialSecurity:  getDecimal("STATUTORY_SOCIAL_SECURITY", decimal.Zero),
			HealthInsurance: getDecimal("STATUTORY_HEALTH_INSURANCE", decimal.Zero),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fallback
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
