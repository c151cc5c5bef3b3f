package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_NAME", "beans")
	t.Setenv("ACHIEVEMENT_WORKERS", "")
	t.Setenv("GRADER_TIMEOUT", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.AchievementWorkers)
	assert.Equal(t, 256, cfg.AchievementQueue)
	assert.Equal(t, 10*time.Second, cfg.GraderTimeout)
	assert.Equal(t, time.Hour, cfg.FrequencyTTL)
	assert.Equal(t, 30, cfg.TriggerRateLimit)
	assert.Contains(t, cfg.DatabaseURL, "dbname=beans")
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_URL", "postgres://u@db/beans")
	t.Setenv("ACHIEVEMENT_WORKERS", "8")
	t.Setenv("FREQUENCY_TTL", "5m")
	t.Setenv("GRADER_TIMEOUT", "not-a-duration")
	t.Setenv("APP_ENV", "production")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u@db/beans", cfg.DatabaseURL)
	assert.Equal(t, 8, cfg.AchievementWorkers)
	assert.Equal(t, 5*time.Minute, cfg.FrequencyTTL)
	assert.Equal(t, 10*time.Second, cfg.GraderTimeout)
	assert.True(t, cfg.IsProduction())
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "at least 32 characters")

	t.Setenv("JWT_SECRET", "")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "must be set")

	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ACHIEVEMENT_WORKERS", "0")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "ACHIEVEMENT_WORKERS")
}
