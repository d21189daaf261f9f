package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adp-api/internal/models"
	appErrors "github.com/noah-isme/uni-adp-api/pkg/errors"
)

type teachingClassRepository interface {
	List(ctx context.Context, filter models.TeachingClassFilter) ([]models.TeachingClass, int, error)
	FindByID(ctx context.Context, id string) (*models.TeachingClass, error)
	ExistsByNaturalKey(ctx context.Context, name, academicYear, excludeID string) (bool, error)
	Create(ctx context.Context, class *models.TeachingClass) error
	Update(ctx context.Context, class *models.TeachingClass) error
	Delete(ctx context.Context, id string) error
	BulkUpsert(ctx context.Context, rows []models.TeachingClassImportRow) (int, error)
}

// CreateTeachingClassRequest represents payload for creating classes.
type CreateTeachingClassRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	StudentCount int    `json:"student_count" validate:"min=0"`
	AcademicYear string `json:"academic_year" validate:"required,max=20"`
}

// UpdateTeachingClassRequest represents payload for updating classes.
type UpdateTeachingClassRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	StudentCount int    `json:"student_count" validate:"min=0"`
	AcademicYear string `json:"academic_year" validate:"required,max=20"`
}

// TeachingClassService orchestrates class roster operations.
type TeachingClassService struct {
	repo      teachingClassRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeachingClassService constructs a TeachingClassService.
func NewTeachingClassService(repo teachingClassRepository, validate *validator.Validate, logger *zap.Logger) *TeachingClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeachingClassService{repo: repo, validator: validate, logger: logger}
}

// List returns classes plus pagination data.
func (s *TeachingClassService) List(ctx context.Context, filter models.TeachingClassFilter) ([]models.TeachingClass, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching classes")
	}
	return classes, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a class by id.
func (s *TeachingClassService) Get(ctx context.Context, id string) (*models.TeachingClass, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching class")
	}
	return class, nil
}

// Create registers a new class roster.
func (s *TeachingClassService) Create(ctx context.Context, req CreateTeachingClassRequest) (*models.TeachingClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teaching class payload")
	}
	exists, err := s.repo.ExistsByNaturalKey(ctx, req.Name, req.AcademicYear, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class key")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class already exists for this academic year")
	}

	class := &models.TeachingClass{
		Name:         strings.TrimSpace(req.Name),
		StudentCount: req.StudentCount,
		AcademicYear: strings.TrimSpace(req.AcademicYear),
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teaching class")
	}
	return class, nil
}

// Update modifies an existing class roster.
func (s *TeachingClassService) Update(ctx context.Context, id string, req UpdateTeachingClassRequest) (*models.TeachingClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teaching class payload")
	}

	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching class")
	}

	exists, err := s.repo.ExistsByNaturalKey(ctx, req.Name, req.AcademicYear, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class key")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class already exists for this academic year")
	}

	class.Name = strings.TrimSpace(req.Name)
	class.StudentCount = req.StudentCount
	class.AcademicYear = strings.TrimSpace(req.AcademicYear)
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teaching class")
	}
	return class, nil
}

// Delete removes a class roster.
func (s *TeachingClassService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teaching class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching class")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teaching class")
	}
	return nil
}

// Import upserts class rows keyed by (name, academic_year). Each row is
// validated before the transaction starts so a bad row rejects the batch.
func (s *TeachingClassService) Import(ctx context.Context, rows []models.TeachingClassImportRow) (int, error) {
	if len(rows) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "import payload is empty")
	}
	for i := range rows {
		rows[i].Name = strings.TrimSpace(rows[i].Name)
		rows[i].AcademicYear = strings.TrimSpace(rows[i].AcademicYear)
		if err := s.validator.Struct(rows[i]); err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class import row")
		}
	}
	count, err := s.repo.BulkUpsert(ctx, rows)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import teaching classes")
	}
	s.logger.Info("teaching classes imported", zap.Int("rows", count))
	return count, nil
}
