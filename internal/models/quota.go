package models

import "time"

// WorkloadQuota holds the standard-hour quota and any reduction granted to
// a lecturer for an academic year. One record per (lecturer, year).
type WorkloadQuota struct {
	ID              string    `db:"id" json:"id"`
	LecturerID      string    `db:"lecturer_id" json:"lecturer_id"`
	AcademicYear    string    `db:"academic_year" json:"academic_year"`
	StandardQuota   float64   `db:"standard_quota" json:"standard_quota"`
	ReductionHours  float64   `db:"reduction_hours" json:"reduction_hours"`
	ReductionReason *string   `db:"reduction_reason" json:"reduction_reason,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
