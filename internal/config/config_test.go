package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NATOURS_PRIMARY.ENV", "production")
	t.Setenv("NATOURS_SERVER.PORT", "3000")
	t.Setenv("NATOURS_SERVER.READ_TIMEOUT", "30")
	t.Setenv("NATOURS_SERVER.WRITE_TIMEOUT", "30")
	t.Setenv("NATOURS_SERVER.IDLE_TIMEOUT", "60")
	t.Setenv("NATOURS_SERVER.CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	t.Setenv("NATOURS_DATABASE.URI", "mongodb://natours:<db_password>@localhost:27017")
	t.Setenv("NATOURS_DATABASE.PASSWORD", "s3cret")
	t.Setenv("NATOURS_DATABASE.NAME", "natours")
	t.Setenv("NATOURS_REDIS.ADDRESS", "localhost:6379")
	t.Setenv("NATOURS_AUTH.SECRET_KEY", "a-very-long-secret")
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Primary.Env)
	assert.False(t, cfg.Primary.IsDevelopment())
	assert.Equal(t, "10K", cfg.Server.BodyLimit)
	assert.Equal(t, "public", cfg.Server.PublicDir)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "natours", cfg.Observability.ServiceName)
	assert.Equal(t, "production", cfg.Observability.Environment)
	assert.True(t, cfg.Observability.IsProduction())
}

func TestLoadConfig_ParsesDurations(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NATOURS_AUTH.TOKEN_TTL", "2h")
	t.Setenv("NATOURS_RATE_LIMIT.WINDOW", "15m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NATOURS_DATABASE.NAME", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDatabaseConfig_ConnectionURI(t *testing.T) {
	d := DatabaseConfig{
		URI:      "mongodb+srv://natours:<db_password>@cluster0.example.net/natours",
		Password: "p@ss",
	}
	assert.Equal(t, "mongodb+srv://natours:p@ss@cluster0.example.net/natours", d.ConnectionURI())
}

func TestObservabilityConfig_Validate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestObservabilityConfig_HealthCheckEnabled(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	assert.True(t, cfg.HealthCheckEnabled("database"))
	assert.False(t, cfg.HealthCheckEnabled("kafka"))

	cfg.HealthChecks.Enabled = false
	assert.False(t, cfg.HealthCheckEnabled("database"))
}
