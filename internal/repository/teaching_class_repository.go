package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-adp-api/internal/models"
)

// TeachingClassRepository manages persistence for class rosters.
type TeachingClassRepository struct {
	db *sqlx.DB
}

// NewTeachingClassRepository constructs a TeachingClassRepository.
func NewTeachingClassRepository(db *sqlx.DB) *TeachingClassRepository {
	return &TeachingClassRepository{db: db}
}

// List returns classes matching filters along with total count.
func (r *TeachingClassRepository) List(ctx context.Context, filter models.TeachingClassFilter) ([]models.TeachingClass, int, error) {
	base := "FROM teaching_classes WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"name": true, "academic_year": true, "student_count": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf("SELECT id, name, student_count, academic_year, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var classes []models.TeachingClass
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teaching classes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teaching classes: %w", err)
	}

	return classes, total, nil
}

// FindByID fetches a class by ID.
func (r *TeachingClassRepository) FindByID(ctx context.Context, id string) (*models.TeachingClass, error) {
	const query = `SELECT id, name, student_count, academic_year, created_at, updated_at FROM teaching_classes WHERE id = $1`
	var class models.TeachingClass
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByNaturalKey fetches a class by its (name, academic_year) pair.
func (r *TeachingClassRepository) FindByNaturalKey(ctx context.Context, name, academicYear string) (*models.TeachingClass, error) {
	const query = `SELECT id, name, student_count, academic_year, created_at, updated_at FROM teaching_classes WHERE name = $1 AND academic_year = $2`
	var class models.TeachingClass
	if err := r.db.GetContext(ctx, &class, query, name, academicYear); err != nil {
		return nil, err
	}
	return &class, nil
}

// ExistsByNaturalKey checks for another class with the same name and year.
func (r *TeachingClassRepository) ExistsByNaturalKey(ctx context.Context, name, academicYear string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM teaching_classes WHERE name = $1 AND academic_year = $2"
	args := []interface{}{name, academicYear}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teaching class key: %w", err)
	}
	return true, nil
}

// Create inserts a new class record.
func (r *TeachingClassRepository) Create(ctx context.Context, class *models.TeachingClass) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO teaching_classes (id, name, student_count, academic_year, created_at, updated_at)
		VALUES (:id, :name, :student_count, :academic_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create teaching class: %w", err)
	}
	return nil
}

// Update modifies an existing class record.
func (r *TeachingClassRepository) Update(ctx context.Context, class *models.TeachingClass) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teaching_classes SET name = :name, student_count = :student_count, academic_year = :academic_year, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update teaching class: %w", err)
	}
	return nil
}

// Delete removes a class record.
func (r *TeachingClassRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM teaching_classes WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete teaching class: %w", err)
	}
	return nil
}

// BulkUpsert inserts or refreshes class rows keyed by (name, academic_year)
// in a single transaction. Returns how many rows were written.
func (r *TeachingClassRepository) BulkUpsert(ctx context.Context, rows []models.TeachingClassImportRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin class import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `INSERT INTO teaching_classes (id, name, student_count, academic_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (name, academic_year)
		DO UPDATE SET student_count = EXCLUDED.student_count, updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), row.Name, row.StudentCount, row.AcademicYear, now); err != nil {
			return 0, fmt.Errorf("upsert teaching class %q: %w", row.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit class import: %w", err)
	}
	return len(rows), nil
}
