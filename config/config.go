/*
config.go - Server configuration

PURPOSE:
  Reads the server configuration from the environment. A .env file in the
  working directory is loaded first when present, so local runs need no
  exported variables.

ENVIRONMENT:
  APP_ENV                 local | dev | prod (selects the log handler)
  PORT                    HTTP port (default 8080)
  DB_PATH                 SQLite path, ":memory:" allowed (default leave.db)
  REDIS_ADDR              Approval lock backend; empty = in-process lock
  TIMEZONE                IANA zone for day boundaries (default UTC)
  MONTHLY_ACCRUAL         Days credited per month (default 1.67)
  UNPAID_LEAVE_LABEL      Name of the unpaid bucket (default LWP)
  PRIMARY_LEAVE_FALLBACK  Overflow type when none is configured (default Annual Leave)
  LATE_AFTER              First check-in after this clock time is late (default 09:30)
  CREDIT_EXPIRY_INTERVAL  How often expired credits are swept (default 1h)
  LOG_LEVEL               debug | info | warn | error (default info)
  CORS_ORIGINS            Comma-separated allowed origins

SEE ALSO:
  - cmd/server/main.go: Flags override PORT and DB_PATH
*/
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env                  string        `env:"APP_ENV" env-default:"local"`
	Port                 int           `env:"PORT" env-default:"8080"`
	DBPath               string        `env:"DB_PATH" env-default:"leave.db"`
	RedisAddr            string        `env:"REDIS_ADDR"`
	Timezone             string        `env:"TIMEZONE" env-default:"UTC"`
	MonthlyAccrual       string        `env:"MONTHLY_ACCRUAL" env-default:"1.67"`
	UnpaidLeaveLabel     string        `env:"UNPAID_LEAVE_LABEL" env-default:"LWP"`
	PrimaryLeaveFallback string        `env:"PRIMARY_LEAVE_FALLBACK" env-default:"Annual Leave"`
	LateAfter            string        `env:"LATE_AFTER" env-default:"09:30"`
	CreditExpiryInterval time.Duration `env:"CREDIT_EXPIRY_INTERVAL" env-default:"1h"`
	LogLevel             string        `env:"LOG_LEVEL" env-default:"info"`
	CORSOrigins          []string      `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173,http://localhost:8080"`

	loc *time.Location
}

// Load reads .env (if any) and the environment, then validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the raw values and fills the derived fields.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.loc = loc

	accrual, err := decimal.NewFromString(strings.TrimSpace(c.MonthlyAccrual))
	if err != nil {
		return fmt.Errorf("invalid MONTHLY_ACCRUAL %q: %w", c.MonthlyAccrual, err)
	}
	if accrual.IsNegative() {
		return fmt.Errorf("invalid MONTHLY_ACCRUAL %q: must not be negative", c.MonthlyAccrual)
	}

	if _, ok := generic.ParseClock(c.LateAfter); !ok {
		return fmt.Errorf("invalid LATE_AFTER %q: %w", c.LateAfter, generic.ErrInvalidClock)
	}

	if strings.TrimSpace(c.UnpaidLeaveLabel) == "" {
		return errors.New("UNPAID_LEAVE_LABEL must not be empty")
	}
	if c.CreditExpiryInterval <= 0 {
		return fmt.Errorf("invalid CREDIT_EXPIRY_INTERVAL %s", c.CreditExpiryInterval)
	}

	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("invalid APP_ENV %q", c.Env)
	}
	return nil
}

// Location is the zone day boundaries are taken in.
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Accrual is MONTHLY_ACCRUAL as a decimal. Call after Validate.
func (c *Config) Accrual() decimal.Decimal {
	return decimal.RequireFromString(strings.TrimSpace(c.MonthlyAccrual))
}

// LateAfterSeconds is LATE_AFTER in seconds since midnight. Call after Validate.
func (c *Config) LateAfterSeconds() int {
	return generic.MustParseClock(c.LateAfter)
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
