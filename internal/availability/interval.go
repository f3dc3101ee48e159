package availability

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, duration time.Duration) Interval {
	return Interval{Start: start, End: start.Add(duration)}
}

// Overlaps reports whether the two half-open intervals share at least one instant.
// Intervals that only touch at a boundary do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Empty reports whether the interval holds no instant.
func (i Interval) Empty() bool {
	return !i.End.After(i.Start)
}

// Conflicts returns the occupancies that overlap candidate. Occupancies with a
// non-positive duration are ignored, as is the one whose ID equals excludeID.
func Conflicts(candidate Interval, existing []Occupancy, excludeID string) []Occupancy {
	var conflicts []Occupancy
	for _, occ := range existing {
		if isConflict(candidate, occ, excludeID) {
			conflicts = append(conflicts, occ)
		}
	}
	return conflicts
}

// HasConflict is Conflicts without collecting, it returns on the first hit.
func HasConflict(candidate Interval, existing []Occupancy, excludeID string) bool {
	for _, occ := range existing {
		if isConflict(candidate, occ, excludeID) {
			return true
		}
	}
	return false
}

func isConflict(candidate Interval, occ Occupancy, excludeID string) bool {
	if excludeID != "" && occ.ID == excludeID {
		return false
	}
	existing := occ.Interval()
	if existing.Empty() {
		return false
	}
	return candidate.Overlaps(existing)
}
