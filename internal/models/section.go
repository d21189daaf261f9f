package models

import "time"

// CourseSection is a taught section of a subject ("lớp học phần") assigned
// to a lecturer for a semester. When placed on the timetable it also carries
// a day/period range and a room.
//
// Coefficient and StandardHours are computed once at write time from the
// workload policy active at that moment and are never silently recomputed
// on read.
type CourseSection struct {
	ID           string `db:"id" json:"id"`
	SubjectID    string `db:"subject_id" json:"subject_id"`
	ClassID      string `db:"class_id" json:"class_id"`
	LecturerID   string `db:"lecturer_id" json:"lecturer_id"`
	DepartmentID string `db:"department_id" json:"department_id"`
	SemesterID   string `db:"semester_id" json:"semester_id"`

	StudentCount    int `db:"student_count" json:"student_count"`
	TheoryPeriods   int `db:"theory_periods" json:"theory_periods"`
	ExercisePeriods int `db:"exercise_periods" json:"exercise_periods"`
	DiscussPeriods  int `db:"discuss_periods" json:"discuss_periods"`
	PracticePeriods int `db:"practice_periods" json:"practice_periods"`

	// Timetable placement; nil fields mean the section is not yet placed.
	DayOfWeek   *int    `db:"day_of_week" json:"day_of_week,omitempty"`
	StartPeriod *int    `db:"start_period" json:"start_period,omitempty"`
	PeriodCount *int    `db:"period_count" json:"period_count,omitempty"`
	RoomID      *string `db:"room_id" json:"room_id,omitempty"`

	Coefficient   float64 `db:"coefficient" json:"coefficient"`
	StandardHours float64 `db:"standard_hours" json:"standard_hours"`
	PolicyVersion string  `db:"policy_version" json:"policy_version"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Placed reports whether the section occupies a timetable slot.
func (s *CourseSection) Placed() bool {
	return s != nil && s.DayOfWeek != nil && s.StartPeriod != nil && s.PeriodCount != nil
}

// SectionDetail widens CourseSection with joined display names.
type SectionDetail struct {
	CourseSection
	SubjectName  string  `db:"subject_name" json:"subject_name"`
	SubjectCode  string  `db:"subject_code" json:"subject_code"`
	ClassName    string  `db:"class_name" json:"class_name"`
	LecturerName string  `db:"lecturer_name" json:"lecturer_name"`
	RoomCode     *string `db:"room_code" json:"room_code,omitempty"`
}

// SectionPlacement is a placed section row widened with the class and
// subject names used to label timetable conflicts.
type SectionPlacement struct {
	CourseSection
	ClassName   string `db:"class_name" json:"class_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}

// SectionFilter describes query params for listing course sections.
type SectionFilter struct {
	SemesterID   string
	DepartmentID string
	LecturerID   string
	ClassID      string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
