package models

import "time"

// Subject is a curriculum subject ("học phần"). Subject codes are unique
// within a department; period counts are broken out by pedagogical type.
type Subject struct {
	ID              string    `db:"id" json:"id"`
	Code            string    `db:"code" json:"code"`
	Name            string    `db:"name" json:"name"`
	DepartmentID    string    `db:"department_id" json:"department_id"`
	Credits         int       `db:"credits" json:"credits"`
	TheoryPeriods   int       `db:"theory_periods" json:"theory_periods"`
	ExercisePeriods int       `db:"exercise_periods" json:"exercise_periods"`
	DiscussPeriods  int       `db:"discuss_periods" json:"discuss_periods"`
	PracticePeriods int       `db:"practice_periods" json:"practice_periods"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	DepartmentID string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// SubjectImportRow is one record of a bulk subject import.
// Exercise periods are not part of the import format and default to zero.
type SubjectImportRow struct {
	Code            string `json:"code" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Credits         int    `json:"credits" validate:"min=0"`
	TheoryPeriods   int    `json:"theory_periods" validate:"min=0"`
	DiscussPeriods  int    `json:"discuss_periods" validate:"min=0"`
	PracticePeriods int    `json:"practice_periods" validate:"min=0"`
}
