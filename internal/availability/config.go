package availability

import (
	"fmt"
	"time"
)

const (
	DefaultGranularity  = 15 * time.Minute
	DefaultBusinessFrom = 8 * time.Hour
	DefaultBusinessTo   = 16*time.Hour + 30*time.Minute
	DefaultMaxResults   = 6
	DefaultDayCap       = 20
	DefaultRoomPageSize = 1000
)

// Config holds the business calendar and search limits. BusinessStart and
// BusinessEnd are offsets from midnight in Location.
type Config struct {
	Granularity   time.Duration
	BusinessStart time.Duration
	BusinessEnd   time.Duration
	Weekdays      []time.Weekday
	Location      *time.Location
	MaxResults    int
	DayCap        int
	RoomPageSize  int
}

func DefaultConfig() Config {
	return Config{
		Granularity:   DefaultGranularity,
		BusinessStart: DefaultBusinessFrom,
		BusinessEnd:   DefaultBusinessTo,
		Weekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		Location:     time.UTC,
		MaxResults:   DefaultMaxResults,
		DayCap:       DefaultDayCap,
		RoomPageSize: DefaultRoomPageSize,
	}
}

func (c Config) Validate() error {
	if c.Granularity <= 0 || c.Granularity > 24*time.Hour {
		return fmt.Errorf("%w: granularity %s", ErrInvalidConfig, c.Granularity)
	}
	if c.BusinessStart < 0 || c.BusinessEnd > 24*time.Hour || c.BusinessStart >= c.BusinessEnd {
		return fmt.Errorf("%w: business hours %s-%s", ErrInvalidConfig, c.BusinessStart, c.BusinessEnd)
	}
	if len(c.Weekdays) == 0 {
		return fmt.Errorf("%w: no business weekdays", ErrInvalidConfig)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("%w: max results %d", ErrInvalidConfig, c.MaxResults)
	}
	if c.DayCap <= 0 {
		return fmt.Errorf("%w: day cap %d", ErrInvalidConfig, c.DayCap)
	}
	if c.RoomPageSize <= 0 {
		return fmt.Errorf("%w: room page size %d", ErrInvalidConfig, c.RoomPageSize)
	}
	return nil
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Config) isBusinessDay(d time.Weekday) bool {
	for _, wd := range c.Weekdays {
		if wd == d {
			return true
		}
	}
	return false
}

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// startOfDay returns midnight of t's calendar date in t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// atOffset returns the wall-clock instant offset past midnight of t's calendar date.
func atOffset(t time.Time, offset time.Duration) time.Time {
	y, m, d := t.Date()
	h := int(offset / time.Hour)
	mm := int(offset % time.Hour / time.Minute)
	return time.Date(y, m, d, h, mm, 0, 0, t.Location())
}
