package config

import (
	"io"
	"testing"
	"time"

	"roombook/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv(testLogger())

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultMongoDatabaseName, cfg.MongoDatabaseName)
	assert.Equal(t, 15*time.Minute, cfg.SlotGranularity)
	assert.Equal(t, 6, cfg.RecommendationMaxResults)
	assert.False(t, cfg.KafkaEnabled)

	ac, err := cfg.Availability()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, ac.BusinessStart)
	assert.Equal(t, 16*time.Hour+30*time.Minute, ac.BusinessEnd)
	assert.Equal(t, time.UTC, ac.Location)
	assert.Equal(t, 20, ac.DayCap)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvBusinessTimeZone, "Europe/Berlin")
	t.Setenv(EnvBusinessStartOfDay, "09:00")
	t.Setenv(EnvBusinessEndOfDay, "17:00")
	t.Setenv(EnvSlotGranularity, "30m")
	t.Setenv(EnvRecommendationMaxResults, "3")
	t.Setenv(EnvKafkaEnabled, "true")
	t.Setenv(EnvMeetingLockTTL, "5s")

	cfg := FromEnv(testLogger())
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, 5*time.Second, cfg.MeetingLockTTL)

	ac, err := cfg.Availability()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", ac.Location.String())
	assert.Equal(t, 9*time.Hour, ac.BusinessStart)
	assert.Equal(t, 30*time.Minute, ac.Granularity)
	assert.Equal(t, 3, ac.MaxResults)
}

func TestFromEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv(EnvRecommendationDayCap, "many")
	t.Setenv(EnvRequestTimeout, "soon")
	t.Setenv(EnvKafkaEnabled, "maybe")

	cfg := FromEnv(testLogger())
	assert.Equal(t, DefaultRecommendationDayCap, cfg.RecommendationDayCap)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultKafkaEnabled, cfg.KafkaEnabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = "0" }},
		{"bad mongo uri", func(c *Config) { c.MongoURI = "postgres://localhost" }},
		{"unknown zone", func(c *Config) { c.BusinessTimeZone = "Mars/Olympus" }},
		{"bad clock", func(c *Config) { c.BusinessStartOfDay = "8am" }},
		{"closing before opening", func(c *Config) { c.BusinessStartOfDay, c.BusinessEndOfDay = "17:00", "09:00" }},
		{"sub-minute granularity", func(c *Config) { c.SlotGranularity = 90 * time.Second }},
		{"zero max results", func(c *Config) { c.RecommendationMaxResults = 0 }},
		{"zero day cap", func(c *Config) { c.RecommendationDayCap = 0 }},
		{"zero lock ttl", func(c *Config) { c.MeetingLockTTL = 0 }},
		{"bad cron schedule", func(c *Config) { c.LockJanitorSchedule = "whenever" }},
		{"kafka without topic", func(c *Config) { c.KafkaEnabled, c.MeetingEventsTopic = true, " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv(testLogger())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRedactMongoURI(t *testing.T) {
	assert.Equal(t, "mongodb://***:***@db:27017", redactMongoURI("mongodb://admin:secret@db:27017"))
	assert.Equal(t, "mongodb://localhost:27017", redactMongoURI("mongodb://localhost:27017"))
}
