package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roombook/internal/availability"
	"roombook/pkg/config"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Rooms"
)

var (
	ErrNotFound  = errors.New("room not found")
	ErrInvalidID = errors.New("invalid room ID format")
)

type RoomRepository interface {
	availability.RoomReader

	Create(ctx context.Context, room *model.Room) error
	FindByID(ctx context.Context, id string) (*model.Room, error)
	Count(ctx context.Context) (int64, error)
}

type mongoRoomRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomRepository(cfg *config.Config) RoomRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRoomRepository) Create(ctx context.Context, room *model.Room) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	room.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, room)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		room.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	var room model.Room
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&room); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return &room, nil
}

// FindByMinCapacity returns rooms that seat at least minCapacity people,
// smallest first. Ties are broken by name, then ID, so the order is stable.
func (r *mongoRoomRepository) FindByMinCapacity(ctx context.Context, minCapacity int, limit int) ([]availability.RoomCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{
			{Key: "capacity", Value: 1},
			{Key: "name", Value: 1},
			{Key: "_id", Value: 1},
		}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"_id": 1, "name": 1, "capacity": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"capacity": bson.M{"$gte": minCapacity}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var rooms []model.Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}

	candidates := make([]availability.RoomCandidate, 0, len(rooms))
	for _, room := range rooms {
		candidates = append(candidates, availability.RoomCandidate{
			ID:       room.ID,
			Name:     room.Name,
			Capacity: room.Capacity,
		})
	}
	return candidates, nil
}

func (r *mongoRoomRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}
