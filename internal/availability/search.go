package availability

import (
	"context"
	"fmt"
	"time"

	"roombook/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Search recommends (room, start time) pairs for a group of participants.
type Search struct {
	cfg         Config
	slots       *SlotGenerator
	rooms       RoomReader
	occupancies OccupancyReader
	log         *logger.Logger
}

func NewSearch(cfg Config, rooms RoomReader, occupancies OccupancyReader, log *logger.Logger) (*Search, error) {
	slots, err := NewSlotGenerator(cfg)
	if err != nil {
		return nil, err
	}
	return &Search{
		cfg:         cfg,
		slots:       slots,
		rooms:       rooms,
		occupancies: occupancies,
		log:         log,
	}, nil
}

// Recommend walks the candidate slots in order and returns at most MaxResults
// recommendations. A slot is skipped when any required user is busy. Every free
// room that can seat all participants yields one recommendation, in the order
// the rooms were fetched. An empty result is not an error.
func (s *Search) Recommend(ctx context.Context, req SearchRequest) ([]Recommendation, error) {
	if req.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	required, optional := normalizeParticipants(req.RequiredUserIDs, req.OptionalUserIDs)
	headcount := len(required) + len(optional)

	rooms, err := s.rooms.FindByMinCapacity(ctx, headcount, s.cfg.RoomPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms for %d participants: %w", headcount, err)
	}
	results := make([]Recommendation, 0, s.cfg.MaxResults)
	if len(rooms) == 0 {
		s.log.Debug("no room can seat the participants", "headcount", headcount)
		return results, nil
	}

	roomIDs := make([]string, 0, len(rooms))
	for _, r := range rooms {
		roomIDs = append(roomIDs, r.ID)
	}
	users := append(append(make([]string, 0, headcount), required...), optional...)

	var (
		day       *dayOccupancy
		loadedDay time.Time
		slotCount int
	)
	for slot := range s.slots.Candidates(now, req.Duration) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slotCount++

		date := startOfDay(slot)
		if day == nil || !date.Equal(loadedDay) {
			day, err = s.loadDay(ctx, date, users, roomIDs)
			if err != nil {
				return nil, err
			}
			loadedDay = date
		}

		candidate := NewInterval(slot, req.Duration)
		if !day.allFree(required, candidate) {
			continue
		}
		optionalFree := day.countFree(optional, candidate)

		for _, room := range rooms {
			if HasConflict(candidate, day.byRoom[room.ID], "") {
				continue
			}
			results = append(results, Recommendation{
				RoomID:                     room.ID,
				RoomName:                   room.Name,
				RoomCapacity:               room.Capacity,
				StartDateTime:              slot,
				AvailableOptionalUserCount: optionalFree,
			})
			if len(results) >= s.cfg.MaxResults {
				return results, nil
			}
		}
	}

	s.log.Debug("search window exhausted",
		"slots_checked", slotCount,
		"day_cap", s.cfg.DayCap,
		"results", len(results),
	)
	return results, nil
}

// dayOccupancy holds one calendar date's occupancies indexed by user and room.
type dayOccupancy struct {
	byUser map[string][]Occupancy
	byRoom map[string][]Occupancy
}

func (d *dayOccupancy) allFree(userIDs []string, candidate Interval) bool {
	for _, id := range userIDs {
		if HasConflict(candidate, d.byUser[id], "") {
			return false
		}
	}
	return true
}

func (d *dayOccupancy) countFree(userIDs []string, candidate Interval) int {
	free := 0
	for _, id := range userIDs {
		if !HasConflict(candidate, d.byUser[id], "") {
			free++
		}
	}
	return free
}

// loadDay fetches the participants' and rooms' occupancies starting on date
// with one query each, run concurrently.
func (s *Search) loadDay(ctx context.Context, date time.Time, userIDs, roomIDs []string) (*dayOccupancy, error) {
	from, to := date, nextDay(date)

	var byParticipant, byRoom []Occupancy
	g, gctx := errgroup.WithContext(ctx)
	if len(userIDs) > 0 {
		g.Go(func() error {
			occ, err := s.occupancies.FindActiveByParticipants(gctx, userIDs, from, to)
			if err != nil {
				return fmt.Errorf("failed to load participant occupancies for %s: %w", from.Format(time.DateOnly), err)
			}
			byParticipant = occ
			return nil
		})
	}
	g.Go(func() error {
		occ, err := s.occupancies.FindActiveByRooms(gctx, roomIDs, from, to)
		if err != nil {
			return fmt.Errorf("failed to load room occupancies for %s: %w", from.Format(time.DateOnly), err)
		}
		byRoom = occ
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}

	day := &dayOccupancy{
		byUser: make(map[string][]Occupancy, len(userIDs)),
		byRoom: make(map[string][]Occupancy, len(roomIDs)),
	}
	for _, occ := range byParticipant {
		for _, uid := range occ.ParticipantUserIDs {
			if _, ok := wanted[uid]; ok {
				day.byUser[uid] = append(day.byUser[uid], occ)
			}
		}
	}
	for _, occ := range byRoom {
		day.byRoom[occ.RoomID] = append(day.byRoom[occ.RoomID], occ)
	}
	return day, nil
}

// normalizeParticipants drops blanks and duplicates. A user listed as both
// required and optional is kept as required only.
func normalizeParticipants(required, optional []string) ([]string, []string) {
	seen := make(map[string]struct{}, len(required)+len(optional))
	keep := func(ids []string) []string {
		out := make([]string, 0, len(ids))
		for _, id := range ids {
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
		return out
	}
	req := keep(required)
	return req, keep(optional)
}
