package models

import "time"

// Lecturer represents a teaching staff record within a department.
type Lecturer struct {
	ID           string    `db:"id" json:"id"`
	StaffCode    *string   `db:"staff_code" json:"staff_code,omitempty"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"full_name"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Degree       *string   `db:"degree" json:"degree,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// LecturerFilter captures filtering options for listing lecturers.
type LecturerFilter struct {
	DepartmentID string
	Search       string
	Active       *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
