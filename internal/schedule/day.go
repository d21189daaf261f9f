package schedule

import "fmt"

// DayOfWeek is an ISO-8601 weekday: Monday is 1, Sunday is 7.
type DayOfWeek int

const (
	Monday    DayOfWeek = 1
	Tuesday   DayOfWeek = 2
	Wednesday DayOfWeek = 3
	Thursday  DayOfWeek = 4
	Friday    DayOfWeek = 5
	Saturday  DayOfWeek = 6
	Sunday    DayOfWeek = 7
)

var dayLabels = map[DayOfWeek]string{
	Monday:    "Thứ 2",
	Tuesday:   "Thứ 3",
	Wednesday: "Thứ 4",
	Thursday:  "Thứ 5",
	Friday:    "Thứ 6",
	Saturday:  "Thứ 7",
	Sunday:    "Chủ nhật",
}

// Valid reports whether d is a schedulable weekday. Sunday is only
// accepted when allowSunday is set.
func (d DayOfWeek) Valid(allowSunday bool) bool {
	if d < Monday || d > Sunday {
		return false
	}
	if d == Sunday && !allowSunday {
		return false
	}
	return true
}

// Label returns the Vietnamese display name used on timetables.
func (d DayOfWeek) Label() string {
	if label, ok := dayLabels[d]; ok {
		return label
	}
	return fmt.Sprintf("Day %d", int(d))
}

// FromLegacyDay converts the "thứ" numbering used by the old timetable
// spreadsheets (2 = Monday .. 7 = Saturday, 8 = Sunday) to ISO weekdays.
func FromLegacyDay(legacy int) (DayOfWeek, error) {
	if legacy < 2 || legacy > 8 {
		return 0, fmt.Errorf("legacy day out of range: %d", legacy)
	}
	return DayOfWeek(legacy - 1), nil
}
