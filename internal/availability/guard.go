package availability

import (
	"context"
	"fmt"
	"time"
)

// Guard validates that a room or a participant is free before a meeting is
// written. It only reads.
type Guard struct {
	occupancies OccupancyReader
}

func NewGuard(occupancies OccupancyReader) *Guard {
	return &Guard{occupancies: occupancies}
}

// Check reports whether roomID is free for [start, start+duration). The meeting
// identified by excludeMeetingID, if any, is ignored so an update does not
// collide with itself.
func (g *Guard) Check(ctx context.Context, roomID string, start time.Time, duration time.Duration, excludeMeetingID string) (Availability, error) {
	if duration <= 0 {
		return Availability{}, ErrInvalidDuration
	}

	existing, err := g.occupancies.FindActiveByRoom(ctx, roomID, excludeMeetingID)
	if err != nil {
		return Availability{}, fmt.Errorf("failed to load occupancies for room %s: %w", roomID, err)
	}

	conflicts := Conflicts(NewInterval(start, duration), existing, excludeMeetingID)
	return Availability{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// Ensure is Check that fails with a *ConflictError wrapping ErrRoomNotAvailable.
func (g *Guard) Ensure(ctx context.Context, roomID string, start time.Time, duration time.Duration, excludeMeetingID string) error {
	result, err := g.Check(ctx, roomID, start, duration, excludeMeetingID)
	if err != nil {
		return err
	}
	if !result.Available {
		return &ConflictError{RoomID: roomID, Start: start, Duration: duration, Conflicts: result.Conflicts}
	}
	return nil
}

// CheckParticipant reports whether userID has no meeting on the start's calendar
// date that overlaps [start, start+duration).
func (g *Guard) CheckParticipant(ctx context.Context, userID string, start time.Time, duration time.Duration) (Availability, error) {
	if duration <= 0 {
		return Availability{}, ErrInvalidDuration
	}

	existing, err := g.occupancies.FindActiveByParticipant(ctx, userID, start)
	if err != nil {
		return Availability{}, fmt.Errorf("failed to load occupancies for user %s: %w", userID, err)
	}

	conflicts := Conflicts(NewInterval(start, duration), existing, "")
	return Availability{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

type ConflictError struct {
	RoomID    string
	Start     time.Time
	Duration  time.Duration
	Conflicts []Occupancy
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room %s is not available at %s for %s (%d conflicting meetings)",
		e.RoomID, e.Start.Format(time.RFC3339), e.Duration, len(e.Conflicts))
}

func (e *ConflictError) Unwrap() error {
	return ErrRoomNotAvailable
}

func (e *ConflictError) ConflictIDs() []string {
	return Availability{Conflicts: e.Conflicts}.ConflictIDs()
}
