package models

import "time"

// GuidanceKind enumerates supervision task types.
type GuidanceKind string

const (
	// GuidanceGraduationProject is "Đồ án tốt nghiệp" supervision.
	GuidanceGraduationProject GuidanceKind = "GRADUATION_PROJECT"
	// GuidanceInternship is "Thực tập" supervision.
	GuidanceInternship GuidanceKind = "INTERNSHIP"
)

// Valid reports whether the kind is one of the supported task types.
func (k GuidanceKind) Valid() bool {
	return k == GuidanceGraduationProject || k == GuidanceInternship
}

// Label returns the Vietnamese display label used in reports.
func (k GuidanceKind) Label() string {
	switch k {
	case GuidanceGraduationProject:
		return "Đồ án tốt nghiệp"
	case GuidanceInternship:
		return "Thực tập"
	default:
		return string(k)
	}
}

// GuidanceTask is a thesis/internship supervision credit for a lecturer in
// an academic year. ComputedHours is fixed at write time from the policy
// factor table; it has no time dimension and no overlap constraints.
type GuidanceTask struct {
	ID            string       `db:"id" json:"id"`
	LecturerID    string       `db:"lecturer_id" json:"lecturer_id"`
	AcademicYear  string       `db:"academic_year" json:"academic_year"`
	Kind          GuidanceKind `db:"kind" json:"kind"`
	Content       string       `db:"content" json:"content"`
	Credits       float64      `db:"credits" json:"credits"`
	StudentCount  int          `db:"student_count" json:"student_count"`
	ComputedHours float64      `db:"computed_hours" json:"computed_hours"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// GuidanceTaskDetail widens GuidanceTask with the lecturer display name.
type GuidanceTaskDetail struct {
	GuidanceTask
	LecturerName string `db:"lecturer_name" json:"lecturer_name"`
}

// GuidanceFilter defines list filters for guidance tasks.
type GuidanceFilter struct {
	LecturerID   string
	AcademicYear string
	Kind         GuidanceKind
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
