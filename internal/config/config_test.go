package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t, "HTTP_PORT", "JWT_SECRET", "CORS_ALLOWED_ORIGINS", "PLATFORM_COMMISSION_PERCENT",
		"UNPAID_ORDER_TTL", "SCHEDULER_INTERVAL")
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x?sslmode=disable")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "postgres://u:p@db:5432/x?sslmode=disable", cfg.DatabaseURL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, "30", cfg.CommissionPercent.String())
	assert.Equal(t, 72*time.Hour, cfg.UnpaidOrderTTL)
	assert.Equal(t, 5*time.Minute, cfg.SchedulerInterval)
	assert.Len(t, cfg.AllowedOrigins, 2)
}

func TestFromEnv_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://paperdesk.example")

	_, err := fromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestFromEnv_ProductionRequiresOrigins(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	_, err := fromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ALLOWED_ORIGINS")
}

func TestFromEnv_ParsesOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , https://b.example ,")
	t.Setenv("PLATFORM_COMMISSION_PERCENT", "12.5")
	t.Setenv("UNPAID_ORDER_TTL", "24h")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "12.5", cfg.CommissionPercent.String())
	assert.Equal(t, 24*time.Hour, cfg.UnpaidOrderTTL)
}

func TestFromEnv_RejectsBadCommission(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PLATFORM_COMMISSION_PERCENT", "100")

	_, err := fromEnv()
	assert.Error(t, err)
}

func TestFromEnv_RejectsBadDuration(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SCHEDULER_INTERVAL", "soon")

	_, err := fromEnv()
	assert.Error(t, err)
}

func TestGetDatabaseURL_FromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "pg")
	t.Setenv("POSTGRESQL_USER", "app")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "paperdesk")

	assert.Equal(t, "postgres://app:p%40ss@pg:5432/paperdesk?sslmode=disable", getDatabaseURL())
}
