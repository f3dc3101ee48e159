package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roombook/internal/migrations/mongo/validators"
	"roombook/pkg/logger"
)

const (
	RoomsCollection        = "Rooms"
	MeetingsCollection     = "Meetings"
	MeetingLocksCollection = "Meeting_locks"
)

var (
	RoomsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "capacity", Value: 1},
			{Key: "name", Value: 1},
		}},
	}

	MeetingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "room_id", Value: 1},
			{Key: "start_date", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "participant_user_ids", Value: 1},
			{Key: "start_date", Value: 1},
		}},
		{Keys: bson.D{{Key: "deleted", Value: 1}}},
	}

	// Mongo's TTL monitor removes expired locks as a backstop for the janitor.
	MeetingLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "date", Value: 1}}},
	}
)

type collectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() []collectionDef {
	return []collectionDef{
		{Name: RoomsCollection, Indexes: RoomsIndexes, Validator: validators.RoomValidator},
		{Name: MeetingsCollection, Indexes: MeetingsIndexes, Validator: validators.MeetingValidator},
		{Name: MeetingLocksCollection, Indexes: MeetingLocksIndexes, Validator: validators.MeetingLockValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}
