package sanitizer

import (
	"time"

	"roombook/pkg/model"
)

func SanitizeMeeting(m *model.Meeting) {
	m.Title = NormalizeTitle(m.Title)
	m.RoomID = NormalizeID(m.RoomID)
	m.OrganizerID = NormalizeID(m.OrganizerID)
	m.ParticipantUserIDs = NormalizeUserIDs(m.ParticipantUserIDs)
	m.StartDate = normalizeStart(m.StartDate)
}

func SanitizeMeetingUpdate(u *model.MeetingUpdate) {
	u.Title = NormalizeTitle(u.Title)
	u.RoomID = NormalizeID(u.RoomID)
	if u.StartDate != nil {
		start := normalizeStart(*u.StartDate)
		u.StartDate = &start
	}
	if u.ParticipantUserIDs != nil {
		ids := NormalizeUserIDs(*u.ParticipantUserIDs)
		u.ParticipantUserIDs = &ids
	}
}

// SanitizeRecommendation dedupes both lists and drops optional users that are
// already required.
func SanitizeRecommendation(r *model.RecommendationRequest) {
	r.RequiredUserIDs = NormalizeUserIDs(r.RequiredUserIDs)
	r.OptionalUserIDs = Without(NormalizeUserIDs(r.OptionalUserIDs), r.RequiredUserIDs)
}

// normalizeStart stores start times in UTC at millisecond precision, which is
// what BSON dates hold.
func normalizeStart(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC().Truncate(time.Millisecond)
}
