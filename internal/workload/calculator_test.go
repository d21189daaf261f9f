package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoefficientBandBoundaries(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		students int
		want     float64
	}{
		{1, 1.0},
		{40, 1.0},
		{41, 1.1},
		{60, 1.1},
		{61, 1.2},
		{80, 1.2},
		{81, 1.4},
		{100, 1.4},
		{101, 1.5},
		{120, 1.5},
		{121, 1.6},
		{150, 1.6},
		{151, 1.7},
		{500, 1.7},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Coefficient(p, tt.students), "students=%d", tt.students)
	}
}

func TestPracticeGroups(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 0, PracticeGroups(p, 0))
	assert.Equal(t, 0, PracticeGroups(p, -5))
	assert.Equal(t, 1, PracticeGroups(p, 1))
	assert.Equal(t, 1, PracticeGroups(p, 20))
	assert.Equal(t, 2, PracticeGroups(p, 21))
	assert.Equal(t, 3, PracticeGroups(p, 45))
}

func TestTeachingHoursWorkedExample(t *testing.T) {
	p := DefaultPolicy()

	// 3 theory + 2 practice periods, 45 students:
	// 5*1.1 + 2*ceil(45/20) = 5.5 + 6 = 11.5
	got := TeachingHours(p, PeriodCounts{Theory: 3, Practice: 2}, 45)
	assert.Equal(t, 11.5, got)
}

func TestTeachingHoursNoPractice(t *testing.T) {
	p := DefaultPolicy()

	// Pure theory load is just total periods times the coefficient.
	got := TeachingHours(p, PeriodCounts{Theory: 30, Exercise: 15}, 80)
	assert.Equal(t, 54.0, got)
}

func TestTeachingHoursRounding(t *testing.T) {
	p := DefaultPolicy()

	// 7*1.1 = 7.700000000000001 in float64; the result must come back
	// clean at two decimal places.
	got := TeachingHours(p, PeriodCounts{Theory: 7}, 41)
	assert.Equal(t, 7.7, got)
}

func TestTeachingHoursDeterministic(t *testing.T) {
	p := DefaultPolicy()
	periods := PeriodCounts{Theory: 12, Exercise: 4, Discuss: 2, Practice: 6}

	first := TeachingHours(p, periods, 73)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, TeachingHours(p, periods, 73))
	}
	assert.GreaterOrEqual(t, first, 0.0)
}

func TestGuidanceHours(t *testing.T) {
	p := DefaultPolicy()

	// Graduation project: 3 credits x 5 students x 2.0 = 30.0
	assert.Equal(t, 30.0, GuidanceHours(p, true, 3, 5))
	// Internship: 2 credits x 10 students x 0.8 = 16.0
	assert.Equal(t, 16.0, GuidanceHours(p, false, 2, 10))
	// No rounding: 3 x 7 x 0.8 = 16.8 exactly as computed.
	assert.InDelta(t, 16.8, GuidanceHours(p, false, 3, 7), 1e-9)
}
