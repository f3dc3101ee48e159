package availability

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"roombook/pkg/logger"
)

// memStore is an in-memory RoomReader and OccupancyReader.
type memStore struct {
	mu        sync.Mutex
	rooms     []RoomCandidate
	meetings  []Occupancy
	err       error
	dayLoads  int
	roomLoads int
}

func (m *memStore) FindByMinCapacity(_ context.Context, minCapacity int, limit int) ([]RoomCandidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []RoomCandidate
	for _, r := range m.rooms {
		if r.Capacity >= minCapacity && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) FindActiveByRoom(_ context.Context, roomID string, _ string) ([]Occupancy, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []Occupancy
	for _, o := range m.meetings {
		if o.RoomID == roomID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) FindActiveByParticipant(_ context.Context, userID string, onDate time.Time) ([]Occupancy, error) {
	if m.err != nil {
		return nil, m.err
	}
	from := startOfDay(onDate)
	var out []Occupancy
	for _, o := range m.meetings {
		if inRange(o.Start, from, nextDay(from)) && slices.Contains(o.ParticipantUserIDs, userID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) FindActiveByParticipants(_ context.Context, userIDs []string, from, to time.Time) ([]Occupancy, error) {
	m.mu.Lock()
	m.dayLoads++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []Occupancy
	for _, o := range m.meetings {
		if !inRange(o.Start, from, to) {
			continue
		}
		for _, id := range userIDs {
			if slices.Contains(o.ParticipantUserIDs, id) {
				out = append(out, o)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) FindActiveByRooms(_ context.Context, roomIDs []string, from, to time.Time) ([]Occupancy, error) {
	m.mu.Lock()
	m.roomLoads++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []Occupancy
	for _, o := range m.meetings {
		if inRange(o.Start, from, to) && slices.Contains(roomIDs, o.RoomID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// at returns 2026-10-19 (a Monday) plus dayOffset days at hh:mm UTC.
func at(dayOffset, hh, mm int) time.Time {
	return time.Date(2026, time.October, 19+dayOffset, hh, mm, 0, 0, time.UTC)
}

func meeting(id, roomID string, start time.Time, d time.Duration, users ...string) Occupancy {
	return Occupancy{ID: id, RoomID: roomID, Start: start, Duration: d, ParticipantUserIDs: users}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard, Service: "availability-test"})
}
