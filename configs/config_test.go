package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLayersEnvironmentOverDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/study_hub")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("REMINDER_LEAD_TIME", "30m")
	t.Setenv("TIME_ZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.ReminderLeadTime)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "Study Hub", cfg.EmailSenderName)
	assert.Same(t, cfg, App)
}

func TestValidateRequiresSecrets(t *testing.T) {
	cfg := defaultConfig()
	assert.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://localhost/study_hub"
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET is required")

	cfg.JWTSecret = "secret"
	cfg.TimeZone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := defaultConfig()
	cfg.TimeZone = "nowhere"
	assert.Equal(t, time.UTC, cfg.Location())
}
