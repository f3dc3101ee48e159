package availability

import (
	"fmt"
	"iter"
	"time"
)

// SlotGenerator walks the business calendar in granularity steps.
type SlotGenerator struct {
	cfg Config
}

func NewSlotGenerator(cfg Config) (*SlotGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SlotGenerator{cfg: cfg}, nil
}

// Candidates returns the start times at which a meeting of the given duration
// fits inside business hours, beginning at now rounded up to the granularity.
// At most DayCap business days are scanned. Each range over the returned
// sequence starts from scratch.
func (g *SlotGenerator) Candidates(now time.Time, duration time.Duration) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if duration <= 0 {
			return
		}
		t := g.roundUp(now.In(g.cfg.location()))
		day := startOfDay(t)
		scanned := 0
		for {
			if !g.cfg.isBusinessDay(day.Weekday()) {
				day = nextDay(day)
				t = atOffset(day, g.cfg.BusinessStart)
				continue
			}
			scanned++
			if scanned > g.cfg.DayCap {
				return
			}

			open := atOffset(day, g.cfg.BusinessStart)
			closing := atOffset(day, g.cfg.BusinessEnd)
			if t.Before(open) {
				t = open
			}
			for ; !t.Add(duration).After(closing); t = t.Add(g.cfg.Granularity) {
				if !yield(t) {
					return
				}
			}

			day = nextDay(day)
			t = atOffset(day, g.cfg.BusinessStart)
		}
	}
}

// roundUp moves t forward to the next granularity boundary on the wall clock,
// counting from midnight. The result is never before t: 10:15:40 yields 10:30.
func (g *SlotGenerator) roundUp(t time.Time) time.Time {
	minute := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
	if minute.Before(t) {
		minute = minute.Add(time.Minute)
	}
	sinceMidnight := time.Duration(minute.Hour())*time.Hour + time.Duration(minute.Minute())*time.Minute
	if rem := sinceMidnight % g.cfg.Granularity; rem != 0 {
		minute = minute.Add(g.cfg.Granularity - rem)
	}
	return minute
}

func nextDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, day.Location())
}

func (g *SlotGenerator) String() string {
	return fmt.Sprintf("slots[%s every %s, %s-%s, %d days]",
		g.cfg.location(), g.cfg.Granularity, g.cfg.BusinessStart, g.cfg.BusinessEnd, g.cfg.DayCap)
}
