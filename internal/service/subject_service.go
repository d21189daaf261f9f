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

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code, departmentID, excludeID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
	CountSections(ctx context.Context, id string) (int, error)
	BulkUpsert(ctx context.Context, departmentID string, rows []models.SubjectImportRow) (int, error)
}

type subjectDepartmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

// CreateSubjectRequest represents payload for creating subjects.
type CreateSubjectRequest struct {
	Code            string `json:"code" validate:"required,max=20"`
	Name            string `json:"name" validate:"required,max=255"`
	DepartmentID    string `json:"department_id" validate:"required"`
	Credits         int    `json:"credits" validate:"min=0"`
	TheoryPeriods   int    `json:"theory_periods" validate:"min=0"`
	ExercisePeriods int    `json:"exercise_periods" validate:"min=0"`
	DiscussPeriods  int    `json:"discuss_periods" validate:"min=0"`
	PracticePeriods int    `json:"practice_periods" validate:"min=0"`
}

// UpdateSubjectRequest represents payload for updating subjects.
type UpdateSubjectRequest struct {
	Code            string `json:"code" validate:"required,max=20"`
	Name            string `json:"name" validate:"required,max=255"`
	DepartmentID    string `json:"department_id" validate:"required"`
	Credits         int    `json:"credits" validate:"min=0"`
	TheoryPeriods   int    `json:"theory_periods" validate:"min=0"`
	ExercisePeriods int    `json:"exercise_periods" validate:"min=0"`
	DiscussPeriods  int    `json:"discuss_periods" validate:"min=0"`
	PracticePeriods int    `json:"practice_periods" validate:"min=0"`
}

// SubjectService orchestrates subject operations.
type SubjectService struct {
	repo        subjectRepository
	departments subjectDepartmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(repo subjectRepository, departments subjectDepartmentRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, departments: departments, validator: validate, logger: logger}
}

// List returns subjects plus pagination data.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a subject by id.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// Create registers a new subject.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	if err := s.ensureDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByCode(ctx, req.Code, req.DepartmentID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already used in this department")
	}

	subject := &models.Subject{
		Code:            strings.TrimSpace(req.Code),
		Name:            strings.TrimSpace(req.Name),
		DepartmentID:    req.DepartmentID,
		Credits:         req.Credits,
		TheoryPeriods:   req.TheoryPeriods,
		ExercisePeriods: req.ExercisePeriods,
		DiscussPeriods:  req.DiscussPeriods,
		PracticePeriods: req.PracticePeriods,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// Update modifies an existing subject. Changing periods never rewrites
// hours already stored on sections; those keep the values computed when
// they were saved.
func (s *SubjectService) Update(ctx context.Context, id string, req UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if err := s.ensureDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByCode(ctx, req.Code, req.DepartmentID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already used in this department")
	}

	subject.Code = strings.TrimSpace(req.Code)
	subject.Name = strings.TrimSpace(req.Name)
	subject.DepartmentID = req.DepartmentID
	subject.Credits = req.Credits
	subject.TheoryPeriods = req.TheoryPeriods
	subject.ExercisePeriods = req.ExercisePeriods
	subject.DiscussPeriods = req.DiscussPeriods
	subject.PracticePeriods = req.PracticePeriods
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	return subject, nil
}

// Delete removes a subject when no sections reference it.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	count, err := s.repo.CountSections(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count subject sections")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "subject still used by course sections")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	return nil
}

// Import upserts subject rows for one department, keyed by (code,
// department). Rows are validated before the transaction starts.
func (s *SubjectService) Import(ctx context.Context, departmentID string, rows []models.SubjectImportRow) (int, error) {
	if len(rows) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "import payload is empty")
	}
	if err := s.ensureDepartment(ctx, departmentID); err != nil {
		return 0, err
	}
	for i := range rows {
		rows[i].Code = strings.TrimSpace(rows[i].Code)
		rows[i].Name = strings.TrimSpace(rows[i].Name)
		if err := s.validator.Struct(rows[i]); err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject import row")
		}
	}
	count, err := s.repo.BulkUpsert(ctx, departmentID, rows)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import subjects")
	}
	s.logger.Info("subjects imported", zap.String("department_id", departmentID), zap.Int("rows", count))
	return count, nil
}

func (s *SubjectService) ensureDepartment(ctx context.Context, departmentID string) error {
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrBrokenReference, "department does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department")
	}
	return nil
}
