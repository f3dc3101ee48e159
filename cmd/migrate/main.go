package main

import (
	"context"
	"flag"
	"time"

	roomsrepo "roombook/internal/rooms/repository"
	mongoMigration "roombook/internal/migrations/mongo"
	"roombook/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	seedRooms := flag.Bool("seed-rooms", false, "insert demo rooms when the Rooms collection is empty")
	timeout := flag.Duration("timeout", 120*time.Second, "overall migration timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	if *seedRooms {
		n, err := mongoMigration.SeedRooms(ctx, roomsrepo.NewMongoRoomRepository(cfg), mongoMigration.DemoRooms(), cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Room seeding failed", "error", err)
		}
		cfg.Log.Info("Room seeding finished", "created", n)
	}

	cfg.Log.Info("Migration completed successfully")
}
