package config_test

import (
	"testing"
	"time"

	"microblog/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	config.Defaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 2*time.Hour, cfg.Auth.PasswordResetTTL)
	assert.False(t, cfg.Auth.BcryptMinCost)
	assert.Equal(t, "", cfg.RabbitMQ.URL)
	assert.Equal(t, 5, cfg.Feed.PerPage)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg, err := config.FromViper(newViper(map[string]any{
		"DATABASE_DRIVER":    "POSTGRES",
		"DATABASE_DSN":       "host=db",
		"BCRYPT_MIN_COST":    true,
		"PASSWORD_RESET_TTL": "30m",
		"FEED_PER_PAGE":      0,
	}))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db", cfg.Database.DSN)
	assert.True(t, cfg.Auth.BcryptMinCost)
	assert.Equal(t, 30*time.Minute, cfg.Auth.PasswordResetTTL)
	assert.Equal(t, 5, cfg.Feed.PerPage)
}

func TestFromViper_Invalid(t *testing.T) {
	_, err := config.FromViper(newViper(map[string]any{"DATABASE_DRIVER": "mysql"}))
	assert.ErrorContains(t, err, "unsupported DATABASE_DRIVER")

	_, err = config.FromViper(newViper(map[string]any{"JWT_SECRET": ""}))
	assert.ErrorContains(t, err, "JWT_SECRET")

	_, err = config.FromViper(newViper(map[string]any{"PASSWORD_RESET_TTL": "-1h"}))
	assert.ErrorContains(t, err, "PASSWORD_RESET_TTL")
}
