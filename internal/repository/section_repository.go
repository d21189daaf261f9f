package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adp-api/internal/models"
)

// SectionRepository manages persistence for course sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = `cs.id, cs.subject_id, cs.class_id, cs.lecturer_id, cs.department_id, cs.semester_id,
	cs.student_count, cs.theory_periods, cs.exercise_periods, cs.discuss_periods, cs.practice_periods,
	cs.day_of_week, cs.start_period, cs.period_count, cs.room_id,
	cs.coefficient, cs.standard_hours, cs.policy_version, cs.created_at, cs.updated_at`

const sectionJoins = `FROM course_sections cs
	JOIN subjects s ON s.id = cs.subject_id
	JOIN teaching_classes tc ON tc.id = cs.class_id
	JOIN lecturers l ON l.id = cs.lecturer_id
	LEFT JOIN rooms rm ON rm.id = cs.room_id`

// List returns section details matching filters along with total count.
func (r *SectionRepository) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, int, error) {
	base := sectionJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.LecturerID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.lecturer_id = $%d", len(args)+1))
		args = append(args, filter.LecturerID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"created_at":    "cs.created_at",
		"subject_code":  "s.code",
		"lecturer_name": "l.full_name",
		"day_of_week":   "cs.day_of_week",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "cs.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s,
	s.name AS subject_name, s.code AS subject_code, tc.name AS class_name, l.full_name AS lecturer_name, rm.code AS room_code
	%s ORDER BY %s %s LIMIT %d OFFSET %d`, sectionColumns, base, column, order, size, offset)
	var sections []models.SectionDetail
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sections: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sections: %w", err)
	}

	return sections, total, nil
}

// FindByID fetches a section with joined display names.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	query := fmt.Sprintf(`SELECT %s,
	s.name AS subject_name, s.code AS subject_code, tc.name AS class_name, l.full_name AS lecturer_name, rm.code AS room_code
	%s WHERE cs.id = $1`, sectionColumns, sectionJoins)
	var section models.SectionDetail
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// ListPlacements returns the placed sections of a semester: the rows that
// occupy a timetable slot. Unplaced sections never participate in
// conflict checks. Rows carry the class and subject names so a detected
// conflict can name the colliding slot.
func (r *SectionRepository) ListPlacements(ctx context.Context, semesterID string) ([]models.SectionPlacement, error) {
	query := fmt.Sprintf(`SELECT %s, tc.name AS class_name, s.name AS subject_name
	FROM course_sections cs
	JOIN teaching_classes tc ON tc.id = cs.class_id
	JOIN subjects s ON s.id = cs.subject_id
	WHERE cs.semester_id = $1 AND cs.day_of_week IS NOT NULL AND cs.start_period IS NOT NULL AND cs.period_count IS NOT NULL`, sectionColumns)
	var sections []models.SectionPlacement
	if err := r.db.SelectContext(ctx, &sections, query, semesterID); err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	return sections, nil
}

// ListByLecturerYear returns the sections a lecturer teaches across all
// semesters of an academic year, ordered for report output.
func (r *SectionRepository) ListByLecturerYear(ctx context.Context, lecturerID, academicYear string) ([]models.SectionDetail, error) {
	query := fmt.Sprintf(`SELECT %s,
	s.name AS subject_name, s.code AS subject_code, tc.name AS class_name, l.full_name AS lecturer_name, rm.code AS room_code
	%s
	JOIN semesters sem ON sem.id = cs.semester_id
	WHERE cs.lecturer_id = $1 AND sem.academic_year = $2
	ORDER BY s.code ASC`, sectionColumns, sectionJoins)
	var sections []models.SectionDetail
	if err := r.db.SelectContext(ctx, &sections, query, lecturerID, academicYear); err != nil {
		return nil, fmt.Errorf("list lecturer sections: %w", err)
	}
	return sections, nil
}

// Create inserts a new section record with its computed fields.
func (r *SectionRepository) Create(ctx context.Context, section *models.CourseSection) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	section.UpdatedAt = now

	const query = `INSERT INTO course_sections (id, subject_id, class_id, lecturer_id, department_id, semester_id,
		student_count, theory_periods, exercise_periods, discuss_periods, practice_periods,
		day_of_week, start_period, period_count, room_id,
		coefficient, standard_hours, policy_version, created_at, updated_at)
	VALUES (:id, :subject_id, :class_id, :lecturer_id, :department_id, :semester_id,
		:student_count, :theory_periods, :exercise_periods, :discuss_periods, :practice_periods,
		:day_of_week, :start_period, :period_count, :room_id,
		:coefficient, :standard_hours, :policy_version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// Update rewrites a section record, including recomputed fields.
func (r *SectionRepository) Update(ctx context.Context, section *models.CourseSection) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `UPDATE course_sections SET subject_id = :subject_id, class_id = :class_id, lecturer_id = :lecturer_id,
		department_id = :department_id, semester_id = :semester_id,
		student_count = :student_count, theory_periods = :theory_periods, exercise_periods = :exercise_periods,
		discuss_periods = :discuss_periods, practice_periods = :practice_periods,
		day_of_week = :day_of_week, start_period = :start_period, period_count = :period_count, room_id = :room_id,
		coefficient = :coefficient, standard_hours = :standard_hours, policy_version = :policy_version,
		updated_at = :updated_at
	WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// Delete removes a section record.
func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM course_sections WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}

// DeleteBySemester purges every section of a semester and reports how many
// rows were removed.
func (r *SectionRepository) DeleteBySemester(ctx context.Context, semesterID string) (int64, error) {
	const query = `DELETE FROM course_sections WHERE semester_id = $1`
	res, err := r.db.ExecContext(ctx, query, semesterID)
	if err != nil {
		return 0, fmt.Errorf("purge semester sections: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge semester sections rows: %w", err)
	}
	return affected, nil
}
