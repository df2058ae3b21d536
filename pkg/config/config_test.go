package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tyrex-b2b-api/pkg/config"
)

func TestLoadFrom_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.LoadFrom(nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "TRY", cfg.Orders.Currency)
	assert.Equal(t, 30, cfg.Orders.DefaultPaymentTermsDays)
	assert.Equal(t, "2.5", cfg.Pricing.DefaultCommissionPct)
	assert.Equal(t, 4, cfg.Notify.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.Notify.BaseDelay)
	assert.Equal(t, 7*24*time.Hour, cfg.Notify.StaleAfter)
	assert.Equal(t, 30*time.Second, cfg.Partner.Timeout)
	assert.Equal(t, "postgres://postgres:@localhost:5432/tyrex_b2b?sslmode=disable", cfg.DB.ConnectionString())
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "migrations", cfg.DB.MigrationsDir)
}

func TestLoadFrom_Variables(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"KAFKA_BROKERS":             "k1:9092, k2:9092,",
		"NOTIFY_MAX_ATTEMPTS":       "6",
		"NOTIFY_BASE_DELAY_SECONDS": "5",
		"DATABASE_URL":              "postgres://u:p@db:5432/x",
		"HTTP_PORT":                 "no-numérico",
		"DB_MIGRATE":                "true",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 6, cfg.Notify.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Notify.BaseDelay)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DB.ConnectionString())
	assert.Equal(t, 8080, cfg.HTTP.Port, "un entero inválido usa el valor por defecto")
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestLoadFrom_Invalida(t *testing.T) {
	cases := map[string]map[string]string{
		"sin intentos":         {"NOTIFY_MAX_ATTEMPTS": "0"},
		"comisión no numérica": {"PRICING_DEFAULT_COMMISSION_PCT": "dos"},
		"comisión negativa":    {"PRICING_DEFAULT_COMMISSION_PCT": "-1"},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadFrom(values)
			assert.Error(t, err)
		})
	}
}

func TestPricingConfig_CommissionRate(t *testing.T) {
	rate, err := config.PricingConfig{DefaultCommissionPct: "1.75"}.CommissionRate()
	require.NoError(t, err)
	assert.Equal(t, "0.0175", rate.String())
}
