package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roombook/internal/availability"
	meetingserrors "roombook/internal/meetings/errors"
	"roombook/internal/meetings/events"
	"roombook/internal/meetings/repository"
	"roombook/internal/meetings/validator"
	roomsrepo "roombook/internal/rooms/repository"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type MeetingService interface {
	Create(ctx context.Context, meeting *model.Meeting) error
	GetByID(ctx context.Context, id string) (*model.Meeting, error)
	Update(ctx context.Context, id string, updates *model.MeetingUpdate) (*model.Meeting, error)
	Delete(ctx context.Context, id string) error
	Approve(ctx context.Context, id string) (*model.Meeting, error)
	CheckRoom(ctx context.Context, roomID string, start time.Time, duration time.Duration, excludeMeetingID string) (availability.Availability, error)
	CheckParticipant(ctx context.Context, userID string, start time.Time, duration time.Duration) (availability.Availability, error)
	Recommend(ctx context.Context, req *model.RecommendationRequest) ([]availability.Recommendation, error)
}

type meetingService struct {
	repo      repository.MeetingRepository
	lockRepo  repository.MeetingLockRepository
	roomRepo  roomsrepo.RoomRepository
	guard     *availability.Guard
	search    *availability.Search
	publisher events.Publisher
	validator *validator.MeetingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewMeetingService(
	repo repository.MeetingRepository,
	lockRepo repository.MeetingLockRepository,
	roomRepo roomsrepo.RoomRepository,
	search *availability.Search,
	publisher events.Publisher,
	validator *validator.MeetingValidator,
	cfg *config.Config,
) MeetingService {
	return &meetingService{
		repo:      repo,
		lockRepo:  lockRepo,
		roomRepo:  roomRepo,
		guard:     availability.NewGuard(repo),
		search:    search,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *meetingService) log(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx, s.cfg.Log)
}

func (s *meetingService) Create(ctx context.Context, meeting *model.Meeting) error {
	sanitizer.SanitizeMeeting(meeting)
	meeting.ID = ""
	meeting.IsApproved = false
	if err := s.validate(ctx, meeting); err != nil {
		return err
	}
	if err := s.verifyCapacity(ctx, meeting); err != nil {
		return err
	}

	release, err := s.acquireLocks(ctx, meeting.RoomID, meeting.StartDate, meeting.EndDate())
	if err != nil {
		return err
	}
	defer release()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureRoomAvailable(txCtx, meeting, ""); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, meeting); err != nil {
			return storageError(err, "Failed to create meeting")
		}
		return nil
	})
	if err != nil {
		s.log(ctx).Warn("Failed to create meeting", "room_id", meeting.RoomID, "error", err)
		return err
	}

	s.log(ctx).Info("Meeting created successfully",
		"id", meeting.ID,
		"room_id", meeting.RoomID,
		"start_date", meeting.StartDate,
		"duration_min", meeting.DurationMin,
	)
	s.publish(ctx, events.MeetingCreated, meeting)
	return nil
}

func (s *meetingService) GetByID(ctx context.Context, id string) (*model.Meeting, error) {
	id = sanitizer.NormalizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Meeting ID cannot be empty")
	}

	meeting, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	return meeting, nil
}

func (s *meetingService) Update(ctx context.Context, id string, updates *model.MeetingUpdate) (*model.Meeting, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sanitizer.SanitizeMeetingUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.log(ctx).Warn("Meeting update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid update input", err)
	}

	changes := updates.ChangesFrom(existing)
	if changes.IsEmpty() {
		return existing, nil
	}

	merged := mergeMeetingUpdates(existing, changes)
	rescheduled := changes.Reschedules()
	if rescheduled {
		// a moved meeting has to be approved again
		merged.IsApproved = false
		if err := s.validate(ctx, merged); err != nil {
			return nil, err
		}
		// the checked room and interval are stored together
		changes.RoomID = merged.RoomID
		changes.StartDate = &merged.StartDate
		changes.DurationMin = &merged.DurationMin
	}
	if rescheduled || changes.ParticipantUserIDs != nil {
		if err := s.verifyCapacity(ctx, merged); err != nil {
			return nil, err
		}
	}

	if rescheduled {
		release, err := s.acquireLocks(ctx, merged.RoomID, merged.StartDate, merged.EndDate())
		if err != nil {
			return nil, err
		}
		defer release()
	}

	var updated *model.Meeting
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if rescheduled {
			if err := s.ensureRoomAvailable(txCtx, merged, existing.ID); err != nil {
				return err
			}
		}
		stored, err := s.repo.Update(txCtx, existing.ID, changes)
		if err != nil {
			return mapRepoError(err, existing.ID)
		}
		updated = stored
		return nil
	})
	if err != nil {
		s.log(ctx).Warn("Failed to update meeting", "id", id, "error", err)
		return nil, err
	}

	s.log(ctx).Info("Meeting updated successfully", "id", updated.ID, "rescheduled", rescheduled)
	s.publish(ctx, events.MeetingUpdated, updated)
	return updated, nil
}

func (s *meetingService) Delete(ctx context.Context, id string) error {
	meeting, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, meeting.ID); err != nil {
		return mapRepoError(err, meeting.ID)
	}

	s.log(ctx).Info("Meeting deleted successfully", "id", meeting.ID)
	s.publish(ctx, events.MeetingDeleted, meeting)
	return nil
}

// Approve confirms a pending meeting. Approval does not change occupancy:
// pending meetings already hold their room.
func (s *meetingService) Approve(ctx context.Context, id string) (*model.Meeting, error) {
	meeting, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if meeting.IsApproved {
		return nil, apperrors.Conflict(meetingserrors.ErrAlreadyApproved.Error())
	}

	if err := s.repo.SetApproved(ctx, meeting.ID); err != nil {
		return nil, mapRepoError(err, meeting.ID)
	}
	meeting.IsApproved = true

	s.log(ctx).Info("Meeting approved", "id", meeting.ID)
	s.publish(ctx, events.MeetingApproved, meeting)
	return meeting, nil
}

func (s *meetingService) CheckRoom(ctx context.Context, roomID string, start time.Time, duration time.Duration, excludeMeetingID string) (availability.Availability, error) {
	roomID = sanitizer.NormalizeID(roomID)
	if _, err := s.findRoom(ctx, roomID); err != nil {
		return availability.Availability{}, err
	}

	result, err := s.guard.Check(ctx, roomID, start, duration, sanitizer.NormalizeID(excludeMeetingID))
	if err != nil {
		return availability.Availability{}, mapAvailabilityError(err, "Failed to check room availability")
	}
	return result, nil
}

func (s *meetingService) CheckParticipant(ctx context.Context, userID string, start time.Time, duration time.Duration) (availability.Availability, error) {
	userID = sanitizer.NormalizeID(userID)
	if userID == "" {
		return availability.Availability{}, apperrors.InvalidInput("User ID cannot be empty")
	}

	result, err := s.guard.CheckParticipant(ctx, userID, start, duration)
	if err != nil {
		return availability.Availability{}, mapAvailabilityError(err, "Failed to check participant availability")
	}
	return result, nil
}

func (s *meetingService) Recommend(ctx context.Context, req *model.RecommendationRequest) ([]availability.Recommendation, error) {
	sanitizer.SanitizeRecommendation(req)
	if err := s.validator.ValidateRecommendation(req); err != nil {
		s.log(ctx).Warn("Recommendation request validation failed", "error", err)
		return nil, validationError("Invalid recommendation request", err)
	}

	recs, err := s.search.Recommend(ctx, availability.SearchRequest{
		RequiredUserIDs: req.RequiredUserIDs,
		OptionalUserIDs: req.OptionalUserIDs,
		Duration:        time.Duration(req.DurationMin) * time.Minute,
		Now:             s.now(),
	})
	if err != nil {
		return nil, mapAvailabilityError(err, "Failed to compute recommendations")
	}

	s.log(ctx).Debug("Recommendations computed",
		"required", len(req.RequiredUserIDs),
		"optional", len(req.OptionalUserIDs),
		"duration_min", req.DurationMin,
		"count", len(recs),
	)
	return recs, nil
}

// --- Helpers ---

func mergeMeetingUpdates(existing *model.Meeting, updates *model.MeetingUpdate) *model.Meeting {
	merged := *existing

	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.RoomID != "" {
		merged.RoomID = updates.RoomID
	}
	if updates.StartDate != nil {
		merged.StartDate = *updates.StartDate
	}
	if updates.DurationMin != nil {
		merged.DurationMin = *updates.DurationMin
	}
	if updates.ParticipantUserIDs != nil {
		merged.ParticipantUserIDs = *updates.ParticipantUserIDs
	}

	return &merged
}

func (s *meetingService) validate(ctx context.Context, meeting *model.Meeting) error {
	if err := s.validator.Validate(meeting); err != nil {
		s.log(ctx).Warn("Meeting validation failed", "error", err)
		return validationError("Meeting validation failed", err)
	}
	return nil
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func (s *meetingService) findRoom(ctx context.Context, roomID string) (*model.Room, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		switch {
		case errors.Is(err, roomsrepo.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Room", roomID)
		case errors.Is(err, roomsrepo.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid room ID format")
		default:
			return nil, storageError(err, "Failed to retrieve room")
		}
	}
	return room, nil
}

func (s *meetingService) verifyCapacity(ctx context.Context, meeting *model.Meeting) error {
	room, err := s.findRoom(ctx, meeting.RoomID)
	if err != nil {
		return err
	}
	if len(meeting.ParticipantUserIDs) > room.Capacity {
		return apperrors.Validation(meetingserrors.ErrCapacityExceeded.Error(), map[string]any{
			"room_id":      room.ID,
			"capacity":     room.Capacity,
			"participants": len(meeting.ParticipantUserIDs),
		})
	}
	return nil
}

func (s *meetingService) ensureRoomAvailable(ctx context.Context, meeting *model.Meeting, excludeMeetingID string) error {
	err := s.guard.Ensure(ctx, meeting.RoomID, meeting.StartDate, meeting.Duration(), excludeMeetingID)
	if err == nil {
		return nil
	}
	var conflict *availability.ConflictError
	if errors.As(err, &conflict) {
		return apperrors.RoomNotAvailable(conflict.RoomID, conflict.ConflictIDs(), err)
	}
	return mapAvailabilityError(err, "Failed to check room availability")
}

func mapAvailabilityError(err error, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, availability.ErrInvalidDuration):
		return apperrors.InvalidInput("duration_min must be a positive number of minutes")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(message + ": deadline exceeded")
	default:
		return storageError(err, message)
	}
}

func mapRepoError(err error, id string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, meetingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Meeting", id)
	case errors.Is(err, meetingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid meeting ID format")
	default:
		return storageError(err, "Meeting storage operation failed")
	}
}

// storageError reports lost connectivity to the database as a retryable 503.
func storageError(err error, message string) error {
	if mongo.IsNetworkError(err) {
		return apperrors.Unavailable("Meeting storage")
	}
	return apperrors.Internal(message, err)
}

// lockDates lists the UTC calendar dates touched by [start, end).
func lockDates(start, end time.Time) []time.Time {
	y, m, d := start.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	last := end.UTC().Add(-time.Nanosecond)

	dates := []time.Time{day}
	for day = day.AddDate(0, 0, 1); !day.After(last); day = day.AddDate(0, 0, 1) {
		dates = append(dates, day)
	}
	return dates
}

// acquireLocks takes the advisory lock of every date the meeting touches in
// roomID. Concurrent writers for the same room and date fail fast with a
// conflict. The returned func releases what was acquired.
func (s *meetingService) acquireLocks(ctx context.Context, roomID string, start, end time.Time) (func(), error) {
	var held []string
	release := func() {
		releaseCtx := context.WithoutCancel(ctx)
		for _, lockID := range held {
			if err := s.lockRepo.Delete(releaseCtx, lockID); err != nil {
				s.log(ctx).Warn("Failed to release meeting lock", "lock_id", lockID, "error", err)
			}
		}
	}

	expiresAt := s.now().Add(s.cfg.MeetingLockTTL)
	for _, date := range lockDates(start, end) {
		lock := &model.MeetingLock{
			ID:        model.MeetingLockID(roomID, date),
			RoomID:    roomID,
			Date:      date.Format(time.DateOnly),
			ExpiresAt: expiresAt,
		}
		if err := s.lockRepo.Create(ctx, lock); err != nil {
			release()
			if mongo.IsDuplicateKeyError(err) {
				return nil, apperrors.Conflict(meetingserrors.ErrSlotLocked.Error() + ", please try again")
			}
			return nil, storageError(fmt.Errorf("lock %s: %w", lock.ID, err), "Failed to acquire meeting lock")
		}
		held = append(held, lock.ID)
	}
	return release, nil
}

func (s *meetingService) publish(ctx context.Context, eventType string, meeting *model.Meeting) {
	if err := s.publisher.Publish(ctx, eventType, meeting); err != nil {
		s.log(ctx).Error("Failed to publish meeting event",
			"event_type", eventType,
			"id", meeting.ID,
			"error", err,
		)
	}
}
