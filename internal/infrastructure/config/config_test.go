package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "name", cfg.Analytics.GroupBy)
	assert.Equal(t, 30, cfg.Analytics.ForecastMaxDays)
	assert.Equal(t, 30, cfg.AI.TimeoutSeconds)
	assert.Equal(t, "0 3 * * *", cfg.Reconciliation.Schedule)
	assert.False(t, cfg.Reconciliation.AutoCorrect)
	assert.Contains(t, cfg.Database.URL, "postgres://")
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/fintrack?sslmode=disable")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("SENDGRID_API_KEY", "sg-key")
	t.Setenv("AMQP_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("ANTHROPIC_API_KEY", "ak")
	t.Setenv("AI_PRIMARY", "Anthropic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/fintrack?sslmode=disable", cfg.Database.URL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "sendgrid", cfg.Email.Provider)
	assert.Equal(t, "amqp", cfg.Events.Driver)
	assert.Equal(t, "anthropic", cfg.AI.Primary)
	assert.Equal(t, "ak", cfg.AI.Anthropic.APIKey)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			JWT:       JWTConfig{Secret: "s"},
			Storage:   StorageConfig{Driver: "memory"},
			AI:        AIConfig{Primary: "none", TimeoutSeconds: 30},
			Analytics: AnalyticsConfig{GroupBy: "name"},
		}
	}

	require.NoError(t, validate(base()))

	cfg := base()
	cfg.JWT.Secret = ""
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Environment = "production"
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Storage.Driver = "mongo"
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.AI.Primary = "llama"
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Analytics.GroupBy = "color"
	assert.Error(t, validate(cfg))
}
