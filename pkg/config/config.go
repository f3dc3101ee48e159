package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"roombook/internal/availability"
	"roombook/pkg/client"
	"roombook/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	BusinessTimeZone   string
	BusinessStartOfDay string
	BusinessEndOfDay   string
	SlotGranularity    time.Duration

	RecommendationMaxResults int
	RecommendationDayCap     int
	RoomPageSize             int

	MeetingLockTTL      time.Duration
	LockJanitorSchedule string

	KafkaEnabled          bool
	MeetingEventsTopic    string
	MeetingEventsDLQTopic string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads an optional .env file, then the environment. Invalid configuration
// is fatal.
func Load(serviceName string) *Config {
	envFileErr := godotenv.Load()

	cfg := FromEnv(logger.New(logger.Config{
		Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
		Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
		AddSource: true,
		Service:   serviceName,
	}))
	if envFileErr != nil && !os.IsNotExist(envFileErr) {
		cfg.Log.Warn("Failed to read .env file", "error", envFileErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds a Config from environment variables and defaults without
// validating it.
func FromEnv(log *logger.Logger) *Config {
	return &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		BusinessTimeZone:   getEnvStr(EnvBusinessTimeZone, DefaultBusinessTimeZone),
		BusinessStartOfDay: getEnvStr(EnvBusinessStartOfDay, DefaultBusinessStartOfDay),
		BusinessEndOfDay:   getEnvStr(EnvBusinessEndOfDay, DefaultBusinessEndOfDay),
		SlotGranularity:    getEnvDuration(EnvSlotGranularity, DefaultSlotGranularity),

		RecommendationMaxResults: getEnvNum(EnvRecommendationMaxResults, DefaultRecommendationMaxResults),
		RecommendationDayCap:     getEnvNum(EnvRecommendationDayCap, DefaultRecommendationDayCap),
		RoomPageSize:             getEnvNum(EnvRoomPageSize, DefaultRoomPageSize),

		MeetingLockTTL:      getEnvDuration(EnvMeetingLockTTL, DefaultMeetingLockTTL),
		LockJanitorSchedule: getEnvStr(EnvLockJanitorSchedule, DefaultLockJanitorSchedule),

		KafkaEnabled:          getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		MeetingEventsTopic:    getEnvStr(EnvMeetingEventsTopic, DefaultMeetingEventsTopic),
		MeetingEventsDLQTopic: getEnvStr(EnvMeetingEventsDLQTopic, DefaultMeetingEventsDLQTopic),

		Log:    log,
		Client: client.NewClient(),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout": cfg.MongoConnTimeout,
		"RequestTimeout":   cfg.RequestTimeout,
		"IdempotencyTTL":   cfg.IdempotencyTTL,
		"ReadTimeout":      cfg.ReadTimeout,
		"WriteTimeout":     cfg.WriteTimeout,
		"IdleTimeout":      cfg.IdleTimeout,
		"ShutdownTimeout":  cfg.ShutdownTimeout,
		"MeetingLockTTL":   cfg.MeetingLockTTL,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if _, err := time.LoadLocation(cfg.BusinessTimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("BusinessTimeZone is not a known time zone, got: %s", cfg.BusinessTimeZone))
	}
	if !clockRegex.MatchString(cfg.BusinessStartOfDay) {
		errors = append(errors, fmt.Sprintf("BusinessStartOfDay must be in HH:MM format (00:00-23:59), got: %s", cfg.BusinessStartOfDay))
	}
	if !clockRegex.MatchString(cfg.BusinessEndOfDay) {
		errors = append(errors, fmt.Sprintf("BusinessEndOfDay must be in HH:MM format (00:00-23:59), got: %s", cfg.BusinessEndOfDay))
	}
	if cfg.SlotGranularity < time.Minute || cfg.SlotGranularity%time.Minute != 0 {
		errors = append(errors, fmt.Sprintf("SlotGranularity must be a whole number of minutes, got: %s", cfg.SlotGranularity))
	}
	if cfg.RecommendationMaxResults <= 0 {
		errors = append(errors, fmt.Sprintf("RecommendationMaxResults must be positive, got: %d", cfg.RecommendationMaxResults))
	}
	if cfg.RecommendationDayCap <= 0 {
		errors = append(errors, fmt.Sprintf("RecommendationDayCap must be positive, got: %d", cfg.RecommendationDayCap))
	}
	if cfg.RoomPageSize <= 0 {
		errors = append(errors, fmt.Sprintf("RoomPageSize must be positive, got: %d", cfg.RoomPageSize))
	}
	if len(errors) == 0 {
		if _, err := cfg.Availability(); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if _, err := cron.ParseStandard(cfg.LockJanitorSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("LockJanitorSchedule is not a valid cron schedule, got: %s", cfg.LockJanitorSchedule))
	}
	if cfg.KafkaEnabled && strings.TrimSpace(cfg.MeetingEventsTopic) == "" {
		errors = append(errors, "MeetingEventsTopic cannot be empty when Kafka is enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// Availability builds the engine configuration from the business calendar settings.
func (cfg *Config) Availability() (availability.Config, error) {
	loc, err := time.LoadLocation(cfg.BusinessTimeZone)
	if err != nil {
		return availability.Config{}, fmt.Errorf("invalid business time zone %q: %w", cfg.BusinessTimeZone, err)
	}
	start, err := availability.ParseClock(cfg.BusinessStartOfDay)
	if err != nil {
		return availability.Config{}, err
	}
	end, err := availability.ParseClock(cfg.BusinessEndOfDay)
	if err != nil {
		return availability.Config{}, err
	}

	ac := availability.DefaultConfig()
	ac.Location = loc
	ac.BusinessStart = start
	ac.BusinessEnd = end
	ac.Granularity = cfg.SlotGranularity
	ac.MaxResults = cfg.RecommendationMaxResults
	ac.DayCap = cfg.RecommendationDayCap
	ac.RoomPageSize = cfg.RoomPageSize
	if err := ac.Validate(); err != nil {
		return availability.Config{}, err
	}
	return ac, nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"business_time_zone", cfg.BusinessTimeZone,
		"business_start_of_day", cfg.BusinessStartOfDay,
		"business_end_of_day", cfg.BusinessEndOfDay,
		"slot_granularity", cfg.SlotGranularity,
		"recommendation_max_results", cfg.RecommendationMaxResults,
		"recommendation_day_cap", cfg.RecommendationDayCap,
		"room_page_size", cfg.RoomPageSize,
		"meeting_lock_ttl", cfg.MeetingLockTTL,
		"lock_janitor_schedule", cfg.LockJanitorSchedule,
		"kafka_enabled", cfg.KafkaEnabled,
		"meeting_events_topic", cfg.MeetingEventsTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
