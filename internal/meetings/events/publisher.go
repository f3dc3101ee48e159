package events

import (
	"context"
	"fmt"
	"time"

	"roombook/pkg/kafka"
	"roombook/pkg/logger"
	"roombook/pkg/middleware"
	"roombook/pkg/model"
)

const (
	MeetingCreated  = "meeting.created"
	MeetingUpdated  = "meeting.updated"
	MeetingDeleted  = "meeting.deleted"
	MeetingApproved = "meeting.approved"

	SchemaVersion = "1"
	Source        = "meetings-service"
)

// MeetingEvent is the payload published for every meeting state change.
type MeetingEvent struct {
	Type               string    `json:"type"`
	MeetingID          string    `json:"meeting_id"`
	RoomID             string    `json:"room_id"`
	OrganizerID        string    `json:"organizer_id"`
	StartDate          time.Time `json:"start_date"`
	DurationMin        int       `json:"duration_min"`
	ParticipantUserIDs []string  `json:"participant_user_ids"`
	IsApproved         bool      `json:"is_approved"`
	OccurredAt         time.Time `json:"occurred_at"`
}

func NewMeetingEvent(eventType string, m *model.Meeting, at time.Time) MeetingEvent {
	return MeetingEvent{
		Type:               eventType,
		MeetingID:          m.ID,
		RoomID:             m.RoomID,
		OrganizerID:        m.OrganizerID,
		StartDate:          m.StartDate,
		DurationMin:        m.DurationMin,
		ParticipantUserIDs: m.ParticipantUserIDs,
		IsApproved:         m.IsApproved,
		OccurredAt:         at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, meeting *model.Meeting) error
	Close() error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer messagePublisher
	now      func() time.Time
}

// NewKafkaPublisher publishes meeting events keyed by room ID, so events of one
// room keep their order within a partition.
func NewKafkaPublisher(producer *kafka.Producer) Publisher {
	return newKafkaPublisher(producer)
}

func newKafkaPublisher(producer messagePublisher) *kafkaPublisher {
	return &kafkaPublisher{producer: producer, now: time.Now}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, meeting *model.Meeting) error {
	at := p.now().UTC()
	msg, err := kafka.NewMessage().
		WithKey(meeting.RoomID).
		WithValue(NewMeetingEvent(eventType, meeting, at)).
		WithTimestamp(at).
		WithEventID("").
		WithEventType(eventType).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", eventType, err)
	}
	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct {
	log *logger.Logger
}

// NewNoopPublisher drops events. Used when Kafka is disabled.
func NewNoopPublisher(log *logger.Logger) Publisher {
	return &noopPublisher{log: log}
}

func (p *noopPublisher) Publish(_ context.Context, eventType string, meeting *model.Meeting) error {
	p.log.Debug("Meeting event dropped, publishing disabled",
		"event_type", eventType,
		"meeting_id", meeting.ID,
	)
	return nil
}

func (p *noopPublisher) Close() error { return nil }
