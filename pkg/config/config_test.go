package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "300-M", cfg.RateLimit.Rate)
	assert.Equal(t, 10*time.Minute, cfg.Requests.PickupLockTTL)
	assert.True(t, cfg.Authz.Cache)
	assert.Equal(t, time.Minute, cfg.Authz.CacheTTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "postgres://postgres:@localhost:5432/municipal_ops?sslmode=disable", cfg.DB.ConnectionString())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", " 9090 ")
	v.Set("DB_PORT", "no-es-numero")
	v.Set("REDIS_ADDR", "redis:6379")
	v.Set("PICKUP_LOCK_TTL_MINUTES", 3)
	v.Set("AUTHZ_CACHE", "false")
	v.Set("AUTHZ_CACHE_TTL_SECONDS", "15")
	v.Set("RATE_LIMIT", "20-S")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5432, cfg.DB.Port, "valor inválido vuelve al default")
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 3*time.Minute, cfg.Requests.PickupLockTTL)
	assert.False(t, cfg.Authz.Cache)
	assert.Equal(t, 15*time.Second, cfg.Authz.CacheTTL)
	assert.Equal(t, "20-S", cfg.RateLimit.Rate)
}

func TestFromViper_TTLInvalido(t *testing.T) {
	v := viper.New()
	v.Set("PICKUP_LOCK_TTL_MINUTES", "0")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5433, User: "ops", Password: "p@ss:w/rd", DBName: "ops", SSLMode: "require"}
	assert.Equal(t, "postgres://ops:p%40ss%3Aw%2Frd@db:5433/ops?sslmode=require", c.DSN())

	c.DatabaseURL = "postgresql://x@y/z"
	assert.Equal(t, "postgresql://x@y/z", c.ConnectionString())
}
