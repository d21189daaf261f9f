package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adp-api/internal/models"
)

// WorkloadRepository aggregates stored hours per lecturer. Sums always come
// from the computed columns written at section/guidance save time, so a
// summary reflects the policy in force when each row was written.
type WorkloadRepository struct {
	db *sqlx.DB
}

// NewWorkloadRepository constructs a WorkloadRepository.
func NewWorkloadRepository(db *sqlx.DB) *WorkloadRepository {
	return &WorkloadRepository{db: db}
}

type workloadRow struct {
	LecturerID    string  `db:"lecturer_id"`
	LecturerName  string  `db:"lecturer_name"`
	DepartmentID  string  `db:"department_id"`
	TeachingHours float64 `db:"teaching_hours"`
	GuidanceHours float64 `db:"guidance_hours"`
}

// SumByLecturer returns the teaching and guidance hour totals for one
// lecturer across an academic year.
func (r *WorkloadRepository) SumByLecturer(ctx context.Context, lecturerID, academicYear string) (*models.LecturerWorkloadSummary, error) {
	const query = `SELECT l.id AS lecturer_id, l.full_name AS lecturer_name, l.department_id,
	COALESCE((SELECT SUM(cs.standard_hours) FROM course_sections cs JOIN semesters sem ON sem.id = cs.semester_id
		WHERE cs.lecturer_id = l.id AND sem.academic_year = $2), 0) AS teaching_hours,
	COALESCE((SELECT SUM(gt.computed_hours) FROM guidance_tasks gt
		WHERE gt.lecturer_id = l.id AND gt.academic_year = $2), 0) AS guidance_hours
	FROM lecturers l WHERE l.id = $1`

	var row workloadRow
	if err := r.db.GetContext(ctx, &row, query, lecturerID, academicYear); err != nil {
		return nil, err
	}
	return &models.LecturerWorkloadSummary{
		LecturerID:    row.LecturerID,
		LecturerName:  row.LecturerName,
		DepartmentID:  row.DepartmentID,
		AcademicYear:  academicYear,
		TeachingHours: row.TeachingHours,
		GuidanceHours: row.GuidanceHours,
	}, nil
}

// SumByDepartment returns hour totals for every active lecturer of a
// department across an academic year.
func (r *WorkloadRepository) SumByDepartment(ctx context.Context, departmentID, academicYear string) ([]models.LecturerWorkloadSummary, error) {
	const query = `SELECT l.id AS lecturer_id, l.full_name AS lecturer_name, l.department_id,
	COALESCE((SELECT SUM(cs.standard_hours) FROM course_sections cs JOIN semesters sem ON sem.id = cs.semester_id
		WHERE cs.lecturer_id = l.id AND sem.academic_year = $2), 0) AS teaching_hours,
	COALESCE((SELECT SUM(gt.computed_hours) FROM guidance_tasks gt
		WHERE gt.lecturer_id = l.id AND gt.academic_year = $2), 0) AS guidance_hours
	FROM lecturers l WHERE l.department_id = $1 AND l.active = TRUE
	ORDER BY l.full_name ASC`

	var rows []workloadRow
	if err := r.db.SelectContext(ctx, &rows, query, departmentID, academicYear); err != nil {
		return nil, fmt.Errorf("sum department workload: %w", err)
	}

	summaries := make([]models.LecturerWorkloadSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, models.LecturerWorkloadSummary{
			LecturerID:    row.LecturerID,
			LecturerName:  row.LecturerName,
			DepartmentID:  row.DepartmentID,
			AcademicYear:  academicYear,
			TeachingHours: row.TeachingHours,
			GuidanceHours: row.GuidanceHours,
		})
	}
	return summaries, nil
}
