package availability

import (
	"context"
	"time"
)

// Occupancy is the read-only projection of a stored meeting that the engine
// checks candidates against. Repositories only return non-deleted meetings.
type Occupancy struct {
	ID                 string
	RoomID             string
	Start              time.Time
	Duration           time.Duration
	ParticipantUserIDs []string
	IsApproved         bool
}

func (o Occupancy) Interval() Interval {
	return NewInterval(o.Start, o.Duration)
}

type RoomCandidate struct {
	ID       string
	Name     string
	Capacity int
}

type Recommendation struct {
	RoomID                     string    `json:"room_id"`
	RoomName                   string    `json:"room_name"`
	RoomCapacity               int       `json:"room_capacity"`
	StartDateTime              time.Time `json:"start_date_time"`
	AvailableOptionalUserCount int       `json:"available_optional_user_count"`
}

type SearchRequest struct {
	RequiredUserIDs []string
	OptionalUserIDs []string
	Duration        time.Duration
	Now             time.Time
}

// Availability is the outcome of a room or participant check.
type Availability struct {
	Available bool        `json:"available"`
	Conflicts []Occupancy `json:"-"`
}

// ConflictIDs returns the IDs of the conflicting occupancies in order.
func (a Availability) ConflictIDs() []string {
	ids := make([]string, 0, len(a.Conflicts))
	for _, c := range a.Conflicts {
		ids = append(ids, c.ID)
	}
	return ids
}

type RoomReader interface {
	// FindByMinCapacity returns at most limit rooms whose capacity is >= minCapacity,
	// in a stable order. The order decides which room wins a slot.
	FindByMinCapacity(ctx context.Context, minCapacity int, limit int) ([]RoomCandidate, error)
}

type OccupancyReader interface {
	FindActiveByRoom(ctx context.Context, roomID string, excludeID string) ([]Occupancy, error)
	// FindActiveByParticipant returns the user's occupancies starting on the calendar date of onDate.
	FindActiveByParticipant(ctx context.Context, userID string, onDate time.Time) ([]Occupancy, error)
	// FindActiveByParticipants returns occupancies starting in [from, to) that
	// list any of userIDs as a participant.
	FindActiveByParticipants(ctx context.Context, userIDs []string, from, to time.Time) ([]Occupancy, error)
	// FindActiveByRooms returns occupancies starting in [from, to) held in any of roomIDs.
	FindActiveByRooms(ctx context.Context, roomIDs []string, from, to time.Time) ([]Occupancy, error)
}
