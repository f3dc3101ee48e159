package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBusinessTimeZone   = "BUSINESS_TIME_ZONE"
	EnvBusinessStartOfDay = "BUSINESS_START_OF_DAY"
	EnvBusinessEndOfDay   = "BUSINESS_END_OF_DAY"
	EnvSlotGranularity    = "SLOT_GRANULARITY"

	EnvRecommendationMaxResults = "RECOMMENDATION_MAX_RESULTS"
	EnvRecommendationDayCap     = "RECOMMENDATION_DAY_CAP"
	EnvRoomPageSize             = "ROOM_PAGE_SIZE"

	EnvMeetingLockTTL      = "MEETING_LOCK_TTL"
	EnvLockJanitorSchedule = "LOCK_JANITOR_SCHEDULE"

	EnvKafkaEnabled          = "KAFKA_ENABLED"
	EnvMeetingEventsTopic    = "MEETING_EVENTS_TOPIC"
	EnvMeetingEventsDLQTopic = "MEETING_EVENTS_DLQ_TOPIC"
)
