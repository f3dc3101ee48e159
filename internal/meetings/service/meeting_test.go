package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"roombook/internal/availability"
	meetingserrors "roombook/internal/meetings/errors"
	"roombook/internal/meetings/validator"
	roomsrepo "roombook/internal/rooms/repository"
	"roombook/pkg/config"
	mongotx "roombook/pkg/db/mongo"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	roomA = "6560f1f2a1b2c3d4e5f60001"
	roomB = "6560f1f2a1b2c3d4e5f60002"
)

var monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockMeetingRepository struct {
	mu       sync.Mutex
	meetings map[string]*model.Meeting
	nextID   int
	txCalls  int

	updates  []model.MeetingUpdate

	createFunc func(ctx context.Context, m *model.Meeting) error
	// beforeUpdate runs between the service's read and its write.
	beforeUpdate func()
}

func newMockMeetingRepository(existing ...*model.Meeting) *mockMeetingRepository {
	repo := &mockMeetingRepository{meetings: map[string]*model.Meeting{}}
	for _, m := range existing {
		repo.meetings[m.ID] = m
	}
	return repo
}

func (m *mockMeetingRepository) active() []*model.Meeting {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Meeting
	for _, meeting := range m.meetings {
		if !meeting.Deleted {
			out = append(out, meeting)
		}
	}
	return out
}

func (m *mockMeetingRepository) Create(ctx context.Context, meeting *model.Meeting) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, meeting)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	meeting.ID = "6560f1f2a1b2c3d4e5f6100" + string(rune('0'+m.nextID))
	stored := *meeting
	m.meetings[meeting.ID] = &stored
	return nil
}

func (m *mockMeetingRepository) FindByID(ctx context.Context, id string) (*model.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meeting, ok := m.meetings[id]
	if !ok || meeting.Deleted {
		return nil, meetingserrors.ErrNotFound
	}
	copied := *meeting
	return &copied, nil
}

func (m *mockMeetingRepository) Update(ctx context.Context, id string, changes *model.MeetingUpdate) (*model.Meeting, error) {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.meetings[id]
	if !ok || stored.Deleted {
		return nil, meetingserrors.ErrNotFound
	}
	m.updates = append(m.updates, *changes)

	if changes.Title != "" {
		stored.Title = changes.Title
	}
	if changes.RoomID != "" {
		stored.RoomID = changes.RoomID
	}
	if changes.StartDate != nil {
		stored.StartDate = *changes.StartDate
	}
	if changes.DurationMin != nil {
		stored.DurationMin = *changes.DurationMin
	}
	if changes.ParticipantUserIDs != nil {
		stored.ParticipantUserIDs = *changes.ParticipantUserIDs
	}
	if changes.Reschedules() {
		stored.IsApproved = false
	}
	copied := *stored
	return &copied, nil
}

func (m *mockMeetingRepository) SetApproved(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meetings[id].IsApproved = true
	return nil
}

func (m *mockMeetingRepository) SoftDelete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meetings[id].Deleted = true
	return nil
}

func (m *mockMeetingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.mu.Lock()
	m.txCalls++
	m.mu.Unlock()
	return fn(ctx)
}

func toOccupancy(meeting *model.Meeting) availability.Occupancy {
	return availability.Occupancy{
		ID:                 meeting.ID,
		RoomID:             meeting.RoomID,
		Start:              meeting.StartDate,
		Duration:           meeting.Duration(),
		ParticipantUserIDs: meeting.ParticipantUserIDs,
		IsApproved:         meeting.IsApproved,
	}
}

func (m *mockMeetingRepository) FindActiveByRoom(ctx context.Context, roomID string, excludeID string) ([]availability.Occupancy, error) {
	var out []availability.Occupancy
	for _, meeting := range m.active() {
		if meeting.RoomID == roomID && meeting.ID != excludeID {
			out = append(out, toOccupancy(meeting))
		}
	}
	return out, nil
}

func (m *mockMeetingRepository) FindActiveByParticipant(ctx context.Context, userID string, onDate time.Time) ([]availability.Occupancy, error) {
	y, mo, d := onDate.Date()
	from := time.Date(y, mo, d, 0, 0, 0, 0, onDate.Location())
	return m.FindActiveByParticipants(ctx, []string{userID}, from, from.AddDate(0, 0, 1))
}

func (m *mockMeetingRepository) FindActiveByParticipants(ctx context.Context, userIDs []string, from, to time.Time) ([]availability.Occupancy, error) {
	var out []availability.Occupancy
	for _, meeting := range m.active() {
		if meeting.StartDate.Before(from) || !meeting.StartDate.Before(to) {
			continue
		}
		for _, p := range meeting.ParticipantUserIDs {
			if contains(userIDs, p) {
				out = append(out, toOccupancy(meeting))
				break
			}
		}
	}
	return out, nil
}

func (m *mockMeetingRepository) FindActiveByRooms(ctx context.Context, roomIDs []string, from, to time.Time) ([]availability.Occupancy, error) {
	var out []availability.Occupancy
	for _, meeting := range m.active() {
		if contains(roomIDs, meeting.RoomID) && !meeting.StartDate.Before(from) && meeting.StartDate.Before(to) {
			out = append(out, toOccupancy(meeting))
		}
	}
	return out, nil
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

type mockLockRepository struct {
	mu      sync.Mutex
	held    map[string]*model.MeetingLock
	created []string
	deleted []string
}

func newMockLockRepository() *mockLockRepository {
	return &mockLockRepository{held: map[string]*model.MeetingLock{}}
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.MeetingLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[lock.ID]; ok {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key"}}}
	}
	m.held[lock.ID] = lock
	m.created = append(m.created, lock.ID)
	return nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, lockID)
	m.deleted = append(m.deleted, lockID)
	return nil
}

func (m *mockLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type mockRoomRepository struct {
	rooms []*model.Room
}

func (m *mockRoomRepository) FindByMinCapacity(ctx context.Context, minCapacity int, limit int) ([]availability.RoomCandidate, error) {
	var out []availability.RoomCandidate
	for _, r := range m.rooms {
		if r.Capacity >= minCapacity {
			out = append(out, availability.RoomCandidate{ID: r.ID, Name: r.Name, Capacity: r.Capacity})
		}
	}
	return out, nil
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	m.rooms = append(m.rooms, room)
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	for _, r := range m.rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, roomsrepo.ErrNotFound
}

func (m *mockRoomRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.rooms)), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, meeting *model.Meeting) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

// ────────────────────────────────────────────────
// Fixture
// ────────────────────────────────────────────────

type fixture struct {
	service   *meetingService
	repo      *mockMeetingRepository
	locks     *mockLockRepository
	publisher *recordingPublisher
}

func newFixture(t *testing.T, existing ...*model.Meeting) *fixture {
	t.Helper()

	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	cfg := &config.Config{
		Log:            log,
		ReadTimeout:    5 * time.Second,
		MeetingLockTTL: 10 * time.Second,
	}
	now := func() time.Time { return monday.Add(9*time.Hour + 7*time.Minute) }

	repo := newMockMeetingRepository(existing...)
	rooms := &mockRoomRepository{rooms: []*model.Room{
		{ID: roomA, Name: "Aurora", Capacity: 4},
		{ID: roomB, Name: "Borealis", Capacity: 10},
	}}
	search, err := availability.NewSearch(availability.DefaultConfig(), rooms, repo, log)
	if err != nil {
		t.Fatalf("NewSearch() error = %v", err)
	}

	f := &fixture{
		repo:      repo,
		locks:     newMockLockRepository(),
		publisher: &recordingPublisher{},
	}
	svc := NewMeetingService(repo, f.locks, rooms, search, f.publisher,
		validator.NewMeetingValidator(log).WithClock(now), cfg).(*meetingService)
	svc.now = now
	f.service = svc
	return f
}

func newMeeting(roomID string, start time.Time, durationMin int, users ...string) *model.Meeting {
	return &model.Meeting{
		Title:              "Weekly sync",
		RoomID:             roomID,
		OrganizerID:        users[0],
		StartDate:          start,
		DurationMin:        durationMin,
		ParticipantUserIDs: users,
	}
}

func existingMeeting(id, roomID string, start time.Time, durationMin int, users ...string) *model.Meeting {
	m := newMeeting(roomID, start, durationMin, users...)
	m.ID = id
	return m
}

func assertAppError(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("error code = %s, want %s (%v)", appErr.Code, code, err)
	}
	return appErr
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)

	m := newMeeting(roomA, monday.Add(10*time.Hour), 60, "alice", "bob")
	if err := f.service.Create(context.Background(), m); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if m.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if m.IsApproved {
		t.Error("new meetings start pending")
	}
	if f.repo.txCalls != 1 {
		t.Errorf("transactions = %d, want 1", f.repo.txCalls)
	}
	if len(f.locks.held) != 0 {
		t.Errorf("locks still held after create: %v", f.locks.held)
	}
	if len(f.locks.created) != 1 || f.locks.created[0] != model.MeetingLockID(roomA, monday) {
		t.Errorf("locks created = %v", f.locks.created)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0] != "meeting.created" {
		t.Errorf("events = %v", f.publisher.events)
	}
}

func TestCreate_OverlapIsRejectedWithConflictingIDs(t *testing.T) {
	busy := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(10*time.Hour), 60, "carol")
	f := newFixture(t, busy)

	m := newMeeting(roomA, monday.Add(10*time.Hour+30*time.Minute), 30, "alice")
	err := f.service.Create(context.Background(), m)

	appErr := assertAppError(t, err, apperrors.CodeRoomNotAvailable)
	if appErr.StatusCode() != http.StatusConflict {
		t.Errorf("status = %d, want 409", appErr.StatusCode())
	}
	ids, _ := appErr.Details["conflicting_meeting_ids"].([]string)
	if len(ids) != 1 || ids[0] != busy.ID {
		t.Errorf("conflicting ids = %v", appErr.Details["conflicting_meeting_ids"])
	}
	if !errors.Is(err, availability.ErrRoomNotAvailable) {
		t.Error("expected ErrRoomNotAvailable in chain")
	}
	if len(f.locks.held) != 0 {
		t.Error("locks must be released on failure")
	}
	if len(f.publisher.events) != 0 {
		t.Errorf("no event expected, got %v", f.publisher.events)
	}
}

func TestCreate_BackToBackIsAllowed(t *testing.T) {
	busy := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(10*time.Hour), 60, "carol")
	f := newFixture(t, busy)

	m := newMeeting(roomA, monday.Add(11*time.Hour), 30, "alice")
	if err := f.service.Create(context.Background(), m); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestCreate_CapacityExceeded(t *testing.T) {
	f := newFixture(t)

	m := newMeeting(roomA, monday.Add(10*time.Hour), 30, "a1", "a2", "a3", "a4", "a5")
	err := f.service.Create(context.Background(), m)
	assertAppError(t, err, apperrors.CodeValidation)
}

func TestCreate_UnknownRoom(t *testing.T) {
	f := newFixture(t)

	m := newMeeting("6560f1f2a1b2c3d4e5f6ffff", monday.Add(10*time.Hour), 30, "alice")
	err := f.service.Create(context.Background(), m)
	assertAppError(t, err, apperrors.CodeNotFound)
}

func TestCreate_ValidationFailure(t *testing.T) {
	f := newFixture(t)

	m := newMeeting(roomA, monday.Add(-time.Hour), 30, "alice")
	err := f.service.Create(context.Background(), m)
	assertAppError(t, err, apperrors.CodeValidation)
	if f.repo.txCalls != 0 {
		t.Error("no transaction expected for invalid input")
	}
}

func TestCreate_LockHeldByAnotherRequest(t *testing.T) {
	f := newFixture(t)
	start := monday.Add(10 * time.Hour)
	f.locks.held[model.MeetingLockID(roomA, start)] = &model.MeetingLock{}

	err := f.service.Create(context.Background(), newMeeting(roomA, start, 30, "alice"))
	assertAppError(t, err, apperrors.CodeConflict)
	if f.repo.txCalls != 0 {
		t.Error("no transaction expected while locked")
	}
}

func TestCreate_StorageErrorIsInternal(t *testing.T) {
	f := newFixture(t)
	f.repo.createFunc = func(ctx context.Context, m *model.Meeting) error {
		return errors.New("write failed")
	}

	err := f.service.Create(context.Background(), newMeeting(roomA, monday.Add(10*time.Hour), 30, "alice"))
	assertAppError(t, err, apperrors.CodeInternal)
}

func TestCreate_LostConnectionIsUnavailable(t *testing.T) {
	f := newFixture(t)
	f.repo.createFunc = func(ctx context.Context, m *model.Meeting) error {
		return fmt.Errorf("insert: %w", mongo.CommandError{Message: "connection reset", Labels: []string{"NetworkError"}})
	}

	err := f.service.Create(context.Background(), newMeeting(roomA, monday.Add(10*time.Hour), 30, "alice"))
	appErr := assertAppError(t, err, apperrors.CodeUnavailable)
	if appErr.StatusCode() != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", appErr.StatusCode())
	}
}

func TestCreate_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	if err := f.service.Create(context.Background(), newMeeting(roomA, monday.Add(10*time.Hour), 30, "alice")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestLockDates(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same day", monday.Add(10 * time.Hour), monday.Add(11 * time.Hour), 1},
		{"ends at midnight", monday.Add(23 * time.Hour), monday.AddDate(0, 0, 1), 1},
		{"crosses midnight", monday.Add(23 * time.Hour), monday.AddDate(0, 0, 1).Add(time.Hour), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lockDates(tt.start, tt.end); len(got) != tt.want {
				t.Errorf("lockDates() = %v, want %d dates", got, tt.want)
			}
		})
	}
}

// ────────────────────────────────────────────────
// Update / Approve / Delete
// ────────────────────────────────────────────────

func TestUpdate_RescheduleIntoOwnSlotSucceeds(t *testing.T) {
	mine := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(10*time.Hour), 60, "alice")
	mine.IsApproved = true
	f := newFixture(t, mine)

	start := monday.Add(10*time.Hour + 30*time.Minute)
	updated, err := f.service.Update(context.Background(), mine.ID, &model.MeetingUpdate{StartDate: &start})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.StartDate.Equal(start) {
		t.Errorf("start = %v, want %v", updated.StartDate, start)
	}
	if updated.IsApproved {
		t.Error("rescheduled meeting must return to pending")
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0] != "meeting.updated" {
		t.Errorf("events = %v", f.publisher.events)
	}
}

func TestUpdate_RescheduleIntoOtherMeetingConflicts(t *testing.T) {
	mine := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(10*time.Hour), 30, "alice")
	other := existingMeeting("6560f1f2a1b2c3d4e5f60bbb", roomA, monday.Add(12*time.Hour), 30, "bob")
	f := newFixture(t, mine, other)

	start := monday.Add(12*time.Hour + 15*time.Minute)
	_, err := f.service.Update(context.Background(), mine.ID, &model.MeetingUpdate{StartDate: &start})
	assertAppError(t, err, apperrors.CodeRoomNotAvailable)
}

func TestUpdate_TitleOnlySkipsAvailabilityAndLocks(t *testing.T) {
	mine := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(-48*time.Hour), 30, "alice")
	mine.IsApproved = true
	f := newFixture(t, mine)

	updated, err := f.service.Update(context.Background(), mine.ID, &model.MeetingUpdate{Title: "Renamed"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Renamed" || !updated.IsApproved {
		t.Errorf("unexpected meeting after update: %+v", updated)
	}
	if len(f.locks.created) != 0 {
		t.Errorf("locks created = %v, want none", f.locks.created)
	}
}

func TestUpdate_TitleOnlyKeepsConcurrentChanges(t *testing.T) {
	mine := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(10*time.Hour), 30, "alice")
	f := newFixture(t, mine)
	moved := monday.Add(14 * time.Hour)
	f.repo.beforeUpdate = func() {
		f.repo.mu.Lock()
		defer f.repo.mu.Unlock()
		f.repo.meetings[mine.ID].StartDate = moved
		f.repo.meetings[mine.ID].IsApproved = true
	}

	updated, err := f.service.Update(context.Background(), mine.ID, &model.MeetingUpdate{Title: "Renamed"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if !updated.StartDate.Equal(moved) {
		t.Errorf("start = %v, want concurrent move to %v to survive", updated.StartDate, moved)
	}
	if !updated.IsApproved {
		t.Error("concurrent approval must survive a title-only update")
	}
	if updated.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", updated.Title)
	}
	if len(f.repo.updates) != 1 || f.repo.updates[0].Reschedules() || f.repo.updates[0].ParticipantUserIDs != nil {
		t.Errorf("stored changes = %+v, want title only", f.repo.updates)
	}
}

func TestUpdate_SameRoomIsNotAReschedule(t *testing.T) {
	mine := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(10*time.Hour), 30, "alice")
	mine.IsApproved = true
	f := newFixture(t, mine)
	start := mine.StartDate

	updated, err := f.service.Update(context.Background(), mine.ID, &model.MeetingUpdate{
		Title:     "Renamed",
		RoomID:    roomA,
		StartDate: &start,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.IsApproved {
		t.Error("repeating the current room and start must keep approval")
	}
	if len(f.locks.created) != 0 {
		t.Errorf("locks created = %v, want none", f.locks.created)
	}
}

func TestUpdate_RescheduleStoresCheckedSchedule(t *testing.T) {
	mine := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(10*time.Hour), 30, "alice")
	f := newFixture(t, mine)

	if _, err := f.service.Update(context.Background(), mine.ID, &model.MeetingUpdate{RoomID: roomB}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if len(f.repo.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(f.repo.updates))
	}
	got := f.repo.updates[0]
	if got.RoomID != roomB || got.StartDate == nil || !got.StartDate.Equal(mine.StartDate) || got.DurationMin == nil || *got.DurationMin != 30 {
		t.Errorf("stored changes = %+v, want room, start and duration together", got)
	}
}

func TestUpdate_NoChangesIsANoop(t *testing.T) {
	mine := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(10*time.Hour), 30, "alice")
	f := newFixture(t, mine)

	if _, err := f.service.Update(context.Background(), mine.ID, &model.MeetingUpdate{Title: mine.Title}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(f.repo.updates) != 0 || len(f.publisher.events) != 0 {
		t.Errorf("updates = %v events = %v, want none", f.repo.updates, f.publisher.events)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Update(context.Background(), "6560f1f2a1b2c3d4e5f60aaa", &model.MeetingUpdate{Title: "x y"})
	assertAppError(t, err, apperrors.CodeNotFound)
}

func TestApprove(t *testing.T) {
	mine := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(10*time.Hour), 30, "alice")
	f := newFixture(t, mine)

	approved, err := f.service.Approve(context.Background(), mine.ID)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if !approved.IsApproved {
		t.Error("expected approved meeting")
	}

	_, err = f.service.Approve(context.Background(), mine.ID)
	assertAppError(t, err, apperrors.CodeConflict)
}

func TestDelete_FreesTheRoom(t *testing.T) {
	mine := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(10*time.Hour), 60, "alice")
	f := newFixture(t, mine)

	if err := f.service.Delete(context.Background(), mine.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	result, err := f.service.CheckRoom(context.Background(), roomA, monday.Add(10*time.Hour), time.Hour, "")
	if err != nil {
		t.Fatalf("CheckRoom() error = %v", err)
	}
	if !result.Available {
		t.Error("deleted meeting must not block the room")
	}

	_, err = f.service.GetByID(context.Background(), mine.ID)
	assertAppError(t, err, apperrors.CodeNotFound)
}

// ────────────────────────────────────────────────
// Availability checks
// ────────────────────────────────────────────────

func TestCheckRoom(t *testing.T) {
	busy := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(10*time.Hour), 60, "carol")
	f := newFixture(t, busy)

	result, err := f.service.CheckRoom(context.Background(), roomA, monday.Add(10*time.Hour+30*time.Minute), 30*time.Minute, "")
	if err != nil {
		t.Fatalf("CheckRoom() error = %v", err)
	}
	if result.Available || len(result.ConflictIDs()) != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	result, err = f.service.CheckRoom(context.Background(), roomA, monday.Add(10*time.Hour+30*time.Minute), 30*time.Minute, busy.ID)
	if err != nil {
		t.Fatalf("CheckRoom() error = %v", err)
	}
	if !result.Available {
		t.Error("excluded meeting must not conflict")
	}

	_, err = f.service.CheckRoom(context.Background(), roomA, monday.Add(10*time.Hour), 0, "")
	assertAppError(t, err, apperrors.CodeInvalidInput)
}

func TestCheckParticipant_SameDateOnly(t *testing.T) {
	late := existingMeeting("6560f1f2a1b2c3d4e5f60aaa", roomA, monday.Add(23*time.Hour+30*time.Minute), 60, "alice")
	f := newFixture(t, late)

	result, err := f.service.CheckParticipant(context.Background(), "alice", monday.AddDate(0, 0, 1), 15*time.Minute)
	if err != nil {
		t.Fatalf("CheckParticipant() error = %v", err)
	}
	if !result.Available {
		t.Error("meeting starting on the previous date is not considered")
	}

	result, err = f.service.CheckParticipant(context.Background(), "alice", monday.Add(23*time.Hour+45*time.Minute), 15*time.Minute)
	if err != nil {
		t.Fatalf("CheckParticipant() error = %v", err)
	}
	if result.Available {
		t.Error("expected conflict on the same date")
	}
}

// ────────────────────────────────────────────────
// Recommend
// ────────────────────────────────────────────────

func TestRecommend(t *testing.T) {
	f := newFixture(t)

	recs, err := f.service.Recommend(context.Background(), &model.RecommendationRequest{
		RequiredUserIDs: []string{"alice", " alice "},
		OptionalUserIDs: []string{"bob", "alice"},
		DurationMin:     30,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != availability.DefaultMaxResults {
		t.Fatalf("got %d recommendations, want %d", len(recs), availability.DefaultMaxResults)
	}
	first := recs[0]
	if first.RoomID != roomA || !first.StartDateTime.Equal(monday.Add(9*time.Hour+15*time.Minute)) {
		t.Errorf("first recommendation = %+v", first)
	}
	if first.AvailableOptionalUserCount != 1 {
		t.Errorf("optional count = %d, want 1", first.AvailableOptionalUserCount)
	}
}

func TestRecommend_RequiresParticipants(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Recommend(context.Background(), &model.RecommendationRequest{DurationMin: 30})
	assertAppError(t, err, apperrors.CodeValidation)
}
