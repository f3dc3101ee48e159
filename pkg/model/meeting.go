package model

import (
	"slices"
	"time"
)

type Meeting struct {
	ID                 string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title              string    `json:"title" bson:"title" validate:"required,min=2,max=200"`
	RoomID             string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	OrganizerID        string    `json:"organizer_id" bson:"organizer_id" validate:"required,user_id"`
	StartDate          time.Time `json:"start_date" bson:"start_date" validate:"required"`
	DurationMin        int       `json:"duration_min" bson:"duration_min" validate:"required,min=1,max=1440"`
	ParticipantUserIDs []string  `json:"participant_user_ids" bson:"participant_user_ids" validate:"required,min=1,max=500,unique,dive,user_id"`
	IsApproved         bool      `json:"is_approved" bson:"is_approved"`
	Deleted            bool      `json:"-" bson:"deleted"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt          time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

func (m *Meeting) Duration() time.Duration {
	return time.Duration(m.DurationMin) * time.Minute
}

func (m *Meeting) EndDate() time.Time {
	return m.StartDate.Add(m.Duration())
}

type MeetingUpdate struct {
	Title              string     `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	RoomID             string     `json:"room_id,omitempty" validate:"omitempty,mongodb"`
	StartDate          *time.Time `json:"start_date,omitempty" validate:"omitempty"`
	DurationMin        *int       `json:"duration_min,omitempty" validate:"omitempty,min=1,max=1440"`
	ParticipantUserIDs *[]string  `json:"participant_user_ids,omitempty" validate:"omitempty,min=1,max=500,unique,dive,user_id"`
}

// ChangesFrom returns the part of u that differs from existing. Fields equal to
// the stored values are dropped, so a request repeating the current room does
// not count as a move.
func (u *MeetingUpdate) ChangesFrom(existing *Meeting) *MeetingUpdate {
	changes := &MeetingUpdate{}
	if u.Title != "" && u.Title != existing.Title {
		changes.Title = u.Title
	}
	if u.RoomID != "" && u.RoomID != existing.RoomID {
		changes.RoomID = u.RoomID
	}
	if u.StartDate != nil && !u.StartDate.Equal(existing.StartDate) {
		changes.StartDate = u.StartDate
	}
	if u.DurationMin != nil && *u.DurationMin != existing.DurationMin {
		changes.DurationMin = u.DurationMin
	}
	if u.ParticipantUserIDs != nil && !slices.Equal(*u.ParticipantUserIDs, existing.ParticipantUserIDs) {
		changes.ParticipantUserIDs = u.ParticipantUserIDs
	}
	return changes
}

// Reschedules reports whether applying the update moves the meeting in time
// or space, which requires a new availability check.
func (u *MeetingUpdate) Reschedules() bool {
	return u.RoomID != "" || u.StartDate != nil || u.DurationMin != nil
}

func (u *MeetingUpdate) IsEmpty() bool {
	return u.Title == "" && !u.Reschedules() && u.ParticipantUserIDs == nil
}
