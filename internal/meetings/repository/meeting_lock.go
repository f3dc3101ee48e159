package repository

import (
	"context"
	"fmt"
	"time"

	"roombook/pkg/config"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Meeting_locks"
)

// MeetingLockRepository stores advisory locks. Create fails with a duplicate
// key error while another holder owns the same lock ID.
type MeetingLockRepository interface {
	Create(ctx context.Context, lock *model.MeetingLock) error
	Delete(ctx context.Context, lockID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoMeetingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMeetingLockRepository(cfg *config.Config) MeetingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMeetingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoMeetingLockRepository) Create(ctx context.Context, lock *model.MeetingLock) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		return fmt.Errorf("failed to create meeting lock %s: %w", lock.ID, err)
	}
	return nil
}

func (r *mongoMeetingLockRepository) Delete(ctx context.Context, lockID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID}); err != nil {
		return fmt.Errorf("failed to delete meeting lock %s: %w", lockID, err)
	}
	return nil
}

func (r *mongoMeetingLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired meeting locks: %w", err)
	}
	return result.DeletedCount, nil
}
