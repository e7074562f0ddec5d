package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costeo-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, int32(6), cfg.Costing.Decimals)
	assert.Equal(t, "EST_STD", cfg.Costing.DefaultPrefix)
	assert.Equal(t, 30*time.Second, cfg.Lock.TTL)
	assert.Equal(t, "", cfg.Redis.Address, "sin redis se usa el bloqueo en proceso")
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("COSTING_DECIMALS", "4")
	t.Setenv("COSTING_DEFAULT_CURRENCY", "COP")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("LOCK_RETRY_MILLIS", "250")
	t.Setenv("DB_FORCE_IPV4", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, int32(4), cfg.Costing.Decimals)
	assert.Equal(t, "COP", cfg.Costing.DefaultCurrency)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 250*time.Millisecond, cfg.Lock.RetryEvery)
	assert.True(t, cfg.DB.ForceIPv4)
}

func TestLoad_DecimalesFueraDeRango(t *testing.T) {
	t.Setenv("COSTING_DECIMALS", "40")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaContrasena(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "costeo", Password: "p@ss:w/rd", DBName: "costeo", SSLMode: "disable"}
	assert.Equal(t, "postgres://costeo:p%40ss%3Aw%2Frd@db:5432/costeo?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
