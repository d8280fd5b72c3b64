package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-ledger/generic"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "LWP", cfg.UnpaidLeaveLabel)
	assert.Equal(t, "Annual Leave", cfg.PrimaryLeaveFallback)
	assert.Equal(t, "1.67", cfg.Accrual().String())
	assert.Equal(t, 9*3600+30*60, cfg.LateAfterSeconds())
	assert.Equal(t, time.Hour, cfg.CreditExpiryInterval)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TIMEZONE", "Asia/Kolkata")
	t.Setenv("MONTHLY_ACCRUAL", "2")
	t.Setenv("LATE_AFTER", "10:00")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
	assert.Equal(t, "2", cfg.Accrual().String())
	assert.Equal(t, 36000, cfg.LateAfterSeconds())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestValidate_Rejects(t *testing.T) {
	base := func() Config {
		return Config{
			Env: EnvLocal, Port: 8080, Timezone: "UTC", MonthlyAccrual: "1.67",
			UnpaidLeaveLabel: "LWP", LateAfter: "09:30", CreditExpiryInterval: time.Hour,
		}
	}
	require.NoError(t, func() error { c := base(); return c.Validate() }())

	cases := map[string]func(*Config){
		"timezone":     func(c *Config) { c.Timezone = "Mars/Olympus" },
		"accrual":      func(c *Config) { c.MonthlyAccrual = "lots" },
		"negative":     func(c *Config) { c.MonthlyAccrual = "-1" },
		"late after":   func(c *Config) { c.LateAfter = "25:00" },
		"unpaid label": func(c *Config) { c.UnpaidLeaveLabel = " " },
		"env":          func(c *Config) { c.Env = "staging" },
		"port":         func(c *Config) { c.Port = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	c := base()
	c.LateAfter = "nine"
	assert.ErrorIs(t, c.Validate(), generic.ErrInvalidClock)
}
