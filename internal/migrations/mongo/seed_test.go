package mongo

import (
	"context"
	"errors"
	"io"
	"testing"

	"roombook/pkg/logger"
	"roombook/pkg/model"
)

type memRooms struct {
	rooms     []*model.Room
	failAfter int
}

func (m *memRooms) Create(_ context.Context, room *model.Room) error {
	if m.failAfter > 0 && len(m.rooms) >= m.failAfter {
		return errors.New("insert failed")
	}
	m.rooms = append(m.rooms, room)
	return nil
}

func (m *memRooms) Count(_ context.Context) (int64, error) {
	return int64(len(m.rooms)), nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
}

func TestSeedRooms(t *testing.T) {
	store := &memRooms{}

	n, err := SeedRooms(context.Background(), store, DemoRooms(), testLogger())
	if err != nil {
		t.Fatalf("SeedRooms() error = %v", err)
	}
	if n != len(DemoRooms()) || len(store.rooms) != n {
		t.Errorf("seeded %d rooms, store has %d", n, len(store.rooms))
	}

	n, err = SeedRooms(context.Background(), store, DemoRooms(), testLogger())
	if err != nil || n != 0 {
		t.Errorf("second seed = %d, %v; want 0, nil", n, err)
	}
}

func TestSeedRooms_StopsOnError(t *testing.T) {
	store := &memRooms{failAfter: 2}

	n, err := SeedRooms(context.Background(), store, DemoRooms(), testLogger())
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 2 {
		t.Errorf("seeded %d rooms before failing, want 2", n)
	}
}

func TestCollectionsHaveValidatorsAndIndexes(t *testing.T) {
	for _, def := range Collections() {
		if def.Validator == nil {
			t.Errorf("%s: missing validator", def.Name)
		}
		if len(def.Indexes) == 0 {
			t.Errorf("%s: missing indexes", def.Name)
		}
	}
}
