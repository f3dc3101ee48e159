package model

import (
	"fmt"
	"time"
)

// MeetingLock is an advisory lock serializing writes to one room on one
// calendar date. The unique _id makes a second insert fail.
type MeetingLock struct {
	ID        string    `bson:"_id"`
	RoomID    string    `bson:"room_id"`
	Date      string    `bson:"date"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

func MeetingLockID(roomID string, date time.Time) string {
	return fmt.Sprintf("meeting_lock_%s_%s", roomID, date.Format(time.DateOnly))
}
