package mongo

import (
	"context"
	"fmt"

	"roombook/pkg/logger"
	"roombook/pkg/model"
)

// RoomStore is the part of the rooms repository the seeder needs.
type RoomStore interface {
	Create(ctx context.Context, room *model.Room) error
	Count(ctx context.Context) (int64, error)
}

func DemoRooms() []*model.Room {
	return []*model.Room{
		{Name: "Huddle 1", Capacity: 2, Location: "Floor 1"},
		{Name: "Huddle 2", Capacity: 3, Location: "Floor 1"},
		{Name: "Aurora", Capacity: 4, Location: "Floor 2"},
		{Name: "Borealis", Capacity: 6, Location: "Floor 2"},
		{Name: "Cassiopeia", Capacity: 8, Location: "Floor 3"},
		{Name: "Draco", Capacity: 12, Location: "Floor 3"},
		{Name: "Auditorium", Capacity: 40, Location: "Ground floor"},
	}
}

// SeedRooms inserts rooms only into an empty collection and reports how many
// were created.
func SeedRooms(ctx context.Context, store RoomStore, rooms []*model.Room, log *logger.Logger) (int, error) {
	count, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	if count > 0 {
		log.Info("Rooms already present, skipping seed", "count", count)
		return 0, nil
	}

	for i, room := range rooms {
		if err := store.Create(ctx, room); err != nil {
			return i, fmt.Errorf("failed to seed room %q: %w", room.Name, err)
		}
		log.Info("Seeded room", "id", room.ID, "name", room.Name, "capacity", room.Capacity)
	}
	return len(rooms), nil
}
