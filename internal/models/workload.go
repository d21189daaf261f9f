package models

import "time"

// LecturerWorkloadSummary aggregates a lecturer's hours for one academic
// year. Totals are sums of the stored computed fields, never recomputed.
type LecturerWorkloadSummary struct {
	LecturerID     string    `db:"lecturer_id" json:"lecturer_id"`
	LecturerName   string    `db:"lecturer_name" json:"lecturer_name"`
	DepartmentID   string    `db:"department_id" json:"department_id"`
	AcademicYear   string    `json:"academic_year"`
	TeachingHours  float64   `db:"teaching_hours" json:"teaching_hours"`
	GuidanceHours  float64   `db:"guidance_hours" json:"guidance_hours"`
	StandardQuota  float64   `json:"standard_quota"`
	ReductionHours float64   `json:"reduction_hours"`
	TotalHours     float64   `json:"total_hours"`
	Balance        float64   `json:"balance"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// DepartmentWorkloadReport groups lecturer summaries for one department.
type DepartmentWorkloadReport struct {
	DepartmentID   string                    `json:"department_id"`
	DepartmentName string                    `json:"department_name"`
	AcademicYear   string                    `json:"academic_year"`
	Lecturers      []LecturerWorkloadSummary `json:"lecturers"`
	GeneratedAt    time.Time                 `json:"generated_at"`
}
