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

// GuidanceRepository manages persistence for supervision tasks.
type GuidanceRepository struct {
	db *sqlx.DB
}

// NewGuidanceRepository constructs a GuidanceRepository.
func NewGuidanceRepository(db *sqlx.DB) *GuidanceRepository {
	return &GuidanceRepository{db: db}
}

const guidanceColumns = "id, lecturer_id, academic_year, kind, content, credits, student_count, computed_hours, created_at, updated_at"

// List returns guidance tasks matching filters along with total count.
func (r *GuidanceRepository) List(ctx context.Context, filter models.GuidanceFilter) ([]models.GuidanceTask, int, error) {
	base := "FROM guidance_tasks WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.LecturerID != "" {
		conditions = append(conditions, fmt.Sprintf("lecturer_id = $%d", len(args)+1))
		args = append(args, filter.LecturerID)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)+1))
		args = append(args, filter.Kind)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"academic_year": true, "kind": true, "computed_hours": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", guidanceColumns, base, sortBy, order, size, offset)
	var tasks []models.GuidanceTask
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list guidance tasks: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count guidance tasks: %w", err)
	}

	return tasks, total, nil
}

// FindByID fetches a guidance task by ID.
func (r *GuidanceRepository) FindByID(ctx context.Context, id string) (*models.GuidanceTask, error) {
	query := fmt.Sprintf("SELECT %s FROM guidance_tasks WHERE id = $1", guidanceColumns)
	var task models.GuidanceTask
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create inserts a new guidance task with its computed hours.
func (r *GuidanceRepository) Create(ctx context.Context, task *models.GuidanceTask) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	const query = `INSERT INTO guidance_tasks (id, lecturer_id, academic_year, kind, content, credits, student_count, computed_hours, created_at, updated_at)
		VALUES (:id, :lecturer_id, :academic_year, :kind, :content, :credits, :student_count, :computed_hours, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create guidance task: %w", err)
	}
	return nil
}

// Update rewrites a guidance task, including recomputed hours.
func (r *GuidanceRepository) Update(ctx context.Context, task *models.GuidanceTask) error {
	task.UpdatedAt = time.Now().UTC()
	const query = `UPDATE guidance_tasks SET lecturer_id = :lecturer_id, academic_year = :academic_year, kind = :kind, content = :content, credits = :credits, student_count = :student_count, computed_hours = :computed_hours, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("update guidance task: %w", err)
	}
	return nil
}

// Delete removes a guidance task.
func (r *GuidanceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM guidance_tasks WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete guidance task: %w", err)
	}
	return nil
}

// ListByYear returns all guidance tasks of an academic year for reporting.
func (r *GuidanceRepository) ListByYear(ctx context.Context, academicYear string) ([]models.GuidanceTask, error) {
	query := fmt.Sprintf("SELECT %s FROM guidance_tasks WHERE academic_year = $1 ORDER BY lecturer_id, created_at", guidanceColumns)
	var tasks []models.GuidanceTask
	if err := r.db.SelectContext(ctx, &tasks, query, academicYear); err != nil {
		return nil, fmt.Errorf("list guidance tasks by year: %w", err)
	}
	return tasks, nil
}

// ListByLecturerYear returns one lecturer's guidance tasks for an academic year.
func (r *GuidanceRepository) ListByLecturerYear(ctx context.Context, lecturerID, academicYear string) ([]models.GuidanceTask, error) {
	query := fmt.Sprintf("SELECT %s FROM guidance_tasks WHERE lecturer_id = $1 AND academic_year = $2 ORDER BY created_at", guidanceColumns)
	var tasks []models.GuidanceTask
	if err := r.db.SelectContext(ctx, &tasks, query, lecturerID, academicYear); err != nil {
		return nil, fmt.Errorf("list lecturer guidance tasks: %w", err)
	}
	return tasks, nil
}

// ListDetailsByYear returns year-wide guidance rows joined with lecturer names.
func (r *GuidanceRepository) ListDetailsByYear(ctx context.Context, academicYear string) ([]models.GuidanceTaskDetail, error) {
	const query = `SELECT gt.id, gt.lecturer_id, gt.academic_year, gt.kind, gt.content, gt.credits, gt.student_count, gt.computed_hours, gt.created_at, gt.updated_at,
	l.full_name AS lecturer_name
	FROM guidance_tasks gt
	JOIN lecturers l ON l.id = gt.lecturer_id
	WHERE gt.academic_year = $1
	ORDER BY l.full_name, gt.created_at`
	var tasks []models.GuidanceTaskDetail
	if err := r.db.SelectContext(ctx, &tasks, query, academicYear); err != nil {
		return nil, fmt.Errorf("list guidance task details: %w", err)
	}
	return tasks, nil
}
