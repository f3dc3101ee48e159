package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roombook/internal/availability"
	meetingserrors "roombook/internal/meetings/errors"
	"roombook/pkg/config"
	mongotx "roombook/pkg/db/mongo"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Meetings"
)

type MeetingRepository interface {
	availability.OccupancyReader

	Create(ctx context.Context, meeting *model.Meeting) error
	FindByID(ctx context.Context, id string) (*model.Meeting, error)
	Update(ctx context.Context, id string, changes *model.MeetingUpdate) (*model.Meeting, error)
	SetApproved(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoMeetingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoMeetingRepository(cfg *config.Config) MeetingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMeetingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// occupancyProjection limits occupancy reads to the fields the conflict checks use.
var occupancyProjection = bson.M{
	"_id":                  1,
	"room_id":              1,
	"start_date":           1,
	"duration_min":         1,
	"participant_user_ids": 1,
	"is_approved":          1,
}

func (r *mongoMeetingRepository) Create(ctx context.Context, meeting *model.Meeting) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	meeting.CreatedAt = now
	meeting.UpdatedAt = now
	meeting.Deleted = false

	result, err := r.collection.InsertOne(ctx, meeting)
	if err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		meeting.ID = oid.Hex()
	}
	return nil
}

func (r *mongoMeetingRepository) FindByID(ctx context.Context, id string) (*model.Meeting, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", meetingserrors.ErrInvalidID, id)
	}

	var meeting model.Meeting
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "deleted": false}).Decode(&meeting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, meetingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}

	return &meeting, nil
}

// Update applies only the fields present in changes. A change of room, start
// or duration puts the meeting back to pending. It returns the stored meeting
// after the update.
func (r *mongoMeetingRepository) Update(ctx context.Context, id string, changes *model.MeetingUpdate) (*model.Meeting, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", meetingserrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var meeting model.Meeting
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objectID, "deleted": false},
		updateDocument(changes, time.Now().UTC().Truncate(time.Millisecond)),
		opts,
	).Decode(&meeting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, meetingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update meeting: %w", err)
	}
	return &meeting, nil
}

func updateDocument(changes *model.MeetingUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if changes.Title != "" {
		set["title"] = changes.Title
	}
	if changes.RoomID != "" {
		set["room_id"] = changes.RoomID
	}
	if changes.StartDate != nil {
		set["start_date"] = *changes.StartDate
	}
	if changes.DurationMin != nil {
		set["duration_min"] = *changes.DurationMin
	}
	if changes.ParticipantUserIDs != nil {
		set["participant_user_ids"] = *changes.ParticipantUserIDs
	}
	if changes.Reschedules() {
		set["is_approved"] = false
	}
	return bson.M{"$set": set}
}

func (r *mongoMeetingRepository) SetApproved(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "is_approved")
}

func (r *mongoMeetingRepository) SoftDelete(ctx context.Context, id string) error {
	return r.setFlag(ctx, id, "deleted")
}

func (r *mongoMeetingRepository) setFlag(ctx context.Context, id string, field string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", meetingserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		field:        true,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "deleted": false}, update)
	if err != nil {
		return fmt.Errorf("failed to set %s on meeting: %w", field, err)
	}
	if result.MatchedCount == 0 {
		return meetingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoMeetingRepository) FindActiveByRoom(ctx context.Context, roomID string, excludeID string) ([]availability.Occupancy, error) {
	filter := bson.M{"room_id": roomID, "deleted": false}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	return r.findOccupancies(ctx, filter)
}

func (r *mongoMeetingRepository) FindActiveByParticipant(ctx context.Context, userID string, onDate time.Time) ([]availability.Occupancy, error) {
	y, m, d := onDate.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, onDate.Location())
	return r.FindActiveByParticipants(ctx, []string{userID}, from, from.AddDate(0, 0, 1))
}

func (r *mongoMeetingRepository) FindActiveByParticipants(ctx context.Context, userIDs []string, from, to time.Time) ([]availability.Occupancy, error) {
	return r.findOccupancies(ctx, bson.M{
		"participant_user_ids": bson.M{"$in": userIDs},
		"start_date":           bson.M{"$gte": from, "$lt": to},
		"deleted":              false,
	})
}

func (r *mongoMeetingRepository) FindActiveByRooms(ctx context.Context, roomIDs []string, from, to time.Time) ([]availability.Occupancy, error) {
	return r.findOccupancies(ctx, bson.M{
		"room_id":    bson.M{"$in": roomIDs},
		"start_date": bson.M{"$gte": from, "$lt": to},
		"deleted":    false,
	})
}

func (r *mongoMeetingRepository) findOccupancies(ctx context.Context, filter bson.M) ([]availability.Occupancy, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetProjection(occupancyProjection).
		SetSort(bson.D{{Key: "start_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find occupancies: %w", err)
	}
	defer cursor.Close(ctx)

	var meetings []model.Meeting
	if err := cursor.All(ctx, &meetings); err != nil {
		return nil, fmt.Errorf("failed to decode occupancies: %w", err)
	}

	occupancies := make([]availability.Occupancy, 0, len(meetings))
	for i := range meetings {
		occupancies = append(occupancies, ToOccupancy(&meetings[i]))
	}
	return occupancies, nil
}

func (r *mongoMeetingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func ToOccupancy(m *model.Meeting) availability.Occupancy {
	return availability.Occupancy{
		ID:                 m.ID,
		RoomID:             m.RoomID,
		Start:              m.StartDate,
		Duration:           m.Duration(),
		ParticipantUserIDs: m.ParticipantUserIDs,
		IsApproved:         m.IsApproved,
	}
}
