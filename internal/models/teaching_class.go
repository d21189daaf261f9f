package models

import "time"

// TeachingClass is an official class roster ("lớp chính quy") for an
// academic year. Natural key: (name, academic_year).
type TeachingClass struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	StudentCount int       `db:"student_count" json:"student_count"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// TeachingClassFilter defines filters for listing classes.
type TeachingClassFilter struct {
	AcademicYear string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// TeachingClassImportRow is one record of a bulk class import.
type TeachingClassImportRow struct {
	Name         string `json:"name" validate:"required"`
	StudentCount int    `json:"student_count" validate:"min=0"`
	AcademicYear string `json:"academic_year" validate:"required"`
}
