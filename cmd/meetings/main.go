package main

import (
	"roombook/internal/availability"
	"roombook/internal/meetings/events"
	"roombook/internal/meetings/handler"
	"roombook/internal/meetings/jobs"
	"roombook/internal/meetings/repository"
	"roombook/internal/meetings/service"
	"roombook/internal/meetings/validator"
	roomsrepo "roombook/internal/rooms/repository"
	"roombook/pkg/app"
	"roombook/pkg/config"
	"roombook/pkg/kafka"
	kafka_config "roombook/pkg/kafka/config"
	kafka_middleware "roombook/pkg/kafka/middleware"
)

const ServiceName = "meetings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Meetings service")

	publisher := initPublisher(cfg)
	meetingRepo := repository.NewMongoMeetingRepository(cfg)
	lockRepo := repository.NewMeetingLockRepository(cfg)
	meetingService := initServices(cfg, meetingRepo, lockRepo, publisher)

	janitor, err := jobs.NewLockJanitor(cfg.LockJanitorSchedule, cfg.WriteTimeout, lockRepo, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create lock janitor", "error", err)
	}

	serverApp := app.NewApplication(cfg,
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		handler.NewMeetingHandler(meetingService, cfg.Log),
	)
	serverApp.AddWorker(janitor)
	serverApp.OnShutdown("meeting events publisher", publisher.Close)
	serverApp.Run()
}

func initServices(
	cfg *config.Config,
	meetingRepo repository.MeetingRepository,
	lockRepo repository.MeetingLockRepository,
	publisher events.Publisher,
) service.MeetingService {
	availabilityCfg, err := cfg.Availability()
	if err != nil {
		cfg.Log.Fatal("Invalid availability configuration", "error", err)
	}

	roomRepo := roomsrepo.NewMongoRoomRepository(cfg)
	search, err := availability.NewSearch(availabilityCfg, roomRepo, meetingRepo, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create recommendation search", "error", err)
	}

	meetingService := service.NewMeetingService(
		meetingRepo,
		lockRepo,
		roomRepo,
		search,
		publisher,
		validator.NewMeetingValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Meeting service initialized",
		"database", cfg.MongoDatabaseName,
		"business_time_zone", cfg.BusinessTimeZone,
	)
	return meetingService
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, meeting events will not be published")
		return events.NewNoopPublisher(cfg.Log)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.MeetingEventsTopic, cfg.MeetingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	return events.NewKafkaPublisher(producer)
}
