package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func placement(id, lecturer, room, class string, day DayOfWeek, start, count int) Placement {
	return Placement{
		SectionID:   id,
		LecturerID:  lecturer,
		RoomID:      room,
		ClassID:     class,
		Day:         day,
		StartPeriod: start,
		PeriodCount: count,
	}
}

func TestOverlaps(t *testing.T) {
	base := placement("s1", "l1", "r1", "c1", Wednesday, 1, 3) // periods 1..3

	assert.True(t, base.Overlaps(placement("s2", "l2", "r2", "c2", Wednesday, 3, 3)))  // 3..5 shares period 3
	assert.False(t, base.Overlaps(placement("s2", "l2", "r2", "c2", Wednesday, 4, 3))) // 4..6 adjacent, no overlap
	assert.False(t, base.Overlaps(placement("s2", "l2", "r2", "c2", Thursday, 1, 3)))  // same periods, different day
	assert.True(t, base.Overlaps(placement("s2", "l2", "r2", "c2", Wednesday, 2, 1)))  // fully contained
}

func TestCheckEmptySnapshot(t *testing.T) {
	res := Check(placement("s1", "l1", "r1", "c1", Monday, 1, 2), nil, "")
	assert.False(t, res.Conflict)
}

func TestCheckLecturerConflict(t *testing.T) {
	existing := []Placement{placement("s1", "l1", "r1", "c1", Wednesday, 1, 2)}

	// Same lecturer in a different room, overlapping periods.
	res := Check(placement("s2", "l1", "r2", "c2", Wednesday, 2, 2), existing, "")
	assert.True(t, res.Conflict)
	assert.Equal(t, ConflictLecturer, res.Kind)
	assert.Equal(t, "s1", res.SectionID)
	assert.Equal(t, "l1", res.EntityID)
}

func TestCheckRoomConflict(t *testing.T) {
	existing := []Placement{placement("s1", "l1", "r1", "c1", Wednesday, 1, 2)}

	// Different lecturer and class contending for the same room.
	res := Check(placement("s2", "l2", "r1", "c2", Wednesday, 2, 2), existing, "")
	assert.True(t, res.Conflict)
	assert.Equal(t, ConflictRoom, res.Kind)
	assert.Equal(t, "r1", res.EntityID)
}

func TestCheckClassConflict(t *testing.T) {
	existing := []Placement{placement("s1", "l1", "r1", "c1", Friday, 5, 3)}

	res := Check(placement("s2", "l2", "r2", "c1", Friday, 7, 2), existing, "")
	assert.True(t, res.Conflict)
	assert.Equal(t, ConflictClass, res.Kind)
}

func TestCheckLabelsCollision(t *testing.T) {
	existing := []Placement{{
		SectionID:    "s1",
		LecturerID:   "l1",
		RoomID:       "r1",
		ClassID:      "c1",
		Day:          Wednesday,
		StartPeriod:  1,
		PeriodCount:  3,
		ClassLabel:   "CNTT-K65A",
		SubjectLabel: "Giải tích 1",
	}}

	// Lecturer and room collisions name the class already in the slot.
	res := Check(placement("s2", "l1", "r2", "c2", Wednesday, 2, 2), existing, "")
	assert.True(t, res.Conflict)
	assert.Equal(t, ConflictLecturer, res.Kind)
	assert.Equal(t, "CNTT-K65A", res.EntityLabel)

	res = Check(placement("s2", "l2", "r1", "c2", Wednesday, 2, 2), existing, "")
	assert.Equal(t, ConflictRoom, res.Kind)
	assert.Equal(t, "CNTT-K65A", res.EntityLabel)

	// A class collision names the subject the class is already attending.
	res = Check(placement("s2", "l2", "r2", "c1", Wednesday, 2, 2), existing, "")
	assert.Equal(t, ConflictClass, res.Kind)
	assert.Equal(t, "Giải tích 1", res.EntityLabel)
}

func TestCheckNoSharedResource(t *testing.T) {
	existing := []Placement{placement("s1", "l1", "r1", "c1", Wednesday, 1, 4)}

	// Overlapping in time but nothing in common.
	res := Check(placement("s2", "l2", "r2", "c2", Wednesday, 2, 2), existing, "")
	assert.False(t, res.Conflict)
}

func TestCheckAdjacentBlocks(t *testing.T) {
	existing := []Placement{placement("s1", "l1", "r1", "c1", Wednesday, 1, 3)}

	// Back-to-back blocks for the same lecturer are fine.
	res := Check(placement("s2", "l1", "r1", "c1", Wednesday, 4, 3), existing, "")
	assert.False(t, res.Conflict)
}

func TestCheckExcludesSelf(t *testing.T) {
	existing := []Placement{placement("s1", "l1", "r1", "c1", Wednesday, 1, 3)}

	// Editing s1 in place must not collide with its own stored row.
	res := Check(placement("s1", "l1", "r1", "c1", Wednesday, 2, 3), existing, "s1")
	assert.False(t, res.Conflict)

	// But a different section still does.
	res = Check(placement("s2", "l1", "r1", "c1", Wednesday, 2, 3), existing, "s2")
	assert.True(t, res.Conflict)
}

func TestDayValidation(t *testing.T) {
	assert.True(t, Wednesday.Valid(false))
	assert.False(t, Sunday.Valid(false))
	assert.True(t, Sunday.Valid(true))
	assert.False(t, DayOfWeek(0).Valid(true))
	assert.False(t, DayOfWeek(8).Valid(true))
}

func TestFromLegacyDay(t *testing.T) {
	d, err := FromLegacyDay(2)
	assert.NoError(t, err)
	assert.Equal(t, Monday, d)

	d, err = FromLegacyDay(7)
	assert.NoError(t, err)
	assert.Equal(t, Saturday, d)

	d, err = FromLegacyDay(8)
	assert.NoError(t, err)
	assert.Equal(t, Sunday, d)

	_, err = FromLegacyDay(1)
	assert.Error(t, err)
	_, err = FromLegacyDay(9)
	assert.Error(t, err)
}
