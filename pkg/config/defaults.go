package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roombook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBusinessTimeZone   = "UTC"
	DefaultBusinessStartOfDay = "08:00"
	DefaultBusinessEndOfDay   = "16:30"
	DefaultSlotGranularity    = 15 * time.Minute

	DefaultRecommendationMaxResults = 6
	DefaultRecommendationDayCap     = 20
	DefaultRoomPageSize             = 1000

	DefaultMeetingLockTTL      = 10 * time.Second
	DefaultLockJanitorSchedule = "@every 1m"

	DefaultKafkaEnabled          = false
	DefaultMeetingEventsTopic    = "meeting-events"
	DefaultMeetingEventsDLQTopic = "meeting-events-dlq"
)
