package schedule

// ConflictKind names the shared resource two placements collide over.
type ConflictKind string

const (
	ConflictLecturer ConflictKind = "lecturer"
	ConflictRoom     ConflictKind = "room"
	ConflictClass    ConflictKind = "class"
)

// Placement is the scheduling footprint of a course section: who teaches
// it, where, to which class, and which block of consecutive periods on
// which day it occupies. A section without a timetable slot never becomes
// a Placement.
type Placement struct {
	SectionID   string
	LecturerID  string
	RoomID      string
	ClassID     string
	Day         DayOfWeek
	StartPeriod int
	PeriodCount int

	// Display names of the owning class and subject, carried along so a
	// collision can be reported by name rather than by UUID.
	ClassLabel   string
	SubjectLabel string
}

func (p Placement) endPeriod() int {
	return p.StartPeriod + p.PeriodCount - 1
}

// Overlaps reports whether two placements occupy at least one common
// period on the same day. Period ranges are closed on both ends.
func (p Placement) Overlaps(other Placement) bool {
	if p.Day != other.Day {
		return false
	}
	start := p.StartPeriod
	if other.StartPeriod > start {
		start = other.StartPeriod
	}
	end := p.endPeriod()
	if other.endPeriod() < end {
		end = other.endPeriod()
	}
	return start <= end
}

// Result describes the first collision found, if any. EntityLabel names
// the colliding slot in human terms: the owning class of the other
// section for lecturer and room conflicts, the subject the class is
// already attending for class conflicts.
type Result struct {
	Conflict    bool
	Kind        ConflictKind
	SectionID   string
	EntityID    string
	EntityLabel string
}

// Check tests a candidate placement against a snapshot of existing
// placements along the lecturer, room, and class dimensions, in that
// order. excludeID removes the candidate's own stored row from the
// snapshot so that editing a section does not conflict with itself.
// An empty snapshot, or a candidate whose lecturer/room/class matches
// nothing in the snapshot, yields no conflict.
func Check(candidate Placement, existing []Placement, excludeID string) Result {
	for _, other := range existing {
		if excludeID != "" && other.SectionID == excludeID {
			continue
		}
		if !candidate.Overlaps(other) {
			continue
		}
		switch {
		case candidate.LecturerID != "" && candidate.LecturerID == other.LecturerID:
			return Result{Conflict: true, Kind: ConflictLecturer, SectionID: other.SectionID, EntityID: other.LecturerID, EntityLabel: other.ClassLabel}
		case candidate.RoomID != "" && candidate.RoomID == other.RoomID:
			return Result{Conflict: true, Kind: ConflictRoom, SectionID: other.SectionID, EntityID: other.RoomID, EntityLabel: other.ClassLabel}
		case candidate.ClassID != "" && candidate.ClassID == other.ClassID:
			return Result{Conflict: true, Kind: ConflictClass, SectionID: other.SectionID, EntityID: other.ClassID, EntityLabel: other.SubjectLabel}
		}
	}
	return Result{}
}
