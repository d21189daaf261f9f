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

type lecturerRepository interface {
	List(ctx context.Context, filter models.LecturerFilter) ([]models.Lecturer, int, error)
	FindByID(ctx context.Context, id string) (*models.Lecturer, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByStaffCode(ctx context.Context, staffCode, excludeID string) (bool, error)
	Create(ctx context.Context, lecturer *models.Lecturer) error
	Update(ctx context.Context, lecturer *models.Lecturer) error
	Deactivate(ctx context.Context, id string) error
}

type lecturerDepartmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

// CreateLecturerRequest represents payload for creating lecturers.
type CreateLecturerRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	FullName     string  `json:"full_name" validate:"required,max=255"`
	DepartmentID string  `json:"department_id" validate:"required"`
	StaffCode    *string `json:"staff_code" validate:"omitempty,max=50"`
	Degree       *string `json:"degree" validate:"omitempty,max=100"`
	Phone        *string `json:"phone" validate:"omitempty,max=50"`
}

// UpdateLecturerRequest represents payload for updating lecturers.
type UpdateLecturerRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	FullName     string  `json:"full_name" validate:"required,max=255"`
	DepartmentID string  `json:"department_id" validate:"required"`
	StaffCode    *string `json:"staff_code" validate:"omitempty,max=50"`
	Degree       *string `json:"degree" validate:"omitempty,max=100"`
	Phone        *string `json:"phone" validate:"omitempty,max=50"`
	Active       *bool   `json:"active"`
}

// LecturerService orchestrates lecturer operations.
type LecturerService struct {
	repo        lecturerRepository
	departments lecturerDepartmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewLecturerService constructs a LecturerService.
func NewLecturerService(repo lecturerRepository, departments lecturerDepartmentRepository, validate *validator.Validate, logger *zap.Logger) *LecturerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LecturerService{repo: repo, departments: departments, validator: validate, logger: logger}
}

// List returns lecturers plus pagination data.
func (s *LecturerService) List(ctx context.Context, filter models.LecturerFilter) ([]models.Lecturer, *models.Pagination, error) {
	lecturers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lecturers")
	}
	return lecturers, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a lecturer by id.
func (s *LecturerService) Get(ctx context.Context, id string) (*models.Lecturer, error) {
	lecturer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecturer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturer")
	}
	return lecturer, nil
}

// Create registers a new lecturer record.
func (s *LecturerService) Create(ctx context.Context, req CreateLecturerRequest) (*models.Lecturer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lecturer payload")
	}
	if err := s.ensureDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueFields(ctx, req.Email, req.StaffCode, ""); err != nil {
		return nil, err
	}

	lecturer := &models.Lecturer{
		Email:        strings.TrimSpace(req.Email),
		FullName:     strings.TrimSpace(req.FullName),
		DepartmentID: req.DepartmentID,
		Active:       true,
	}
	lecturer.StaffCode = normalizeOptional(req.StaffCode)
	lecturer.Degree = normalizeOptional(req.Degree)
	lecturer.Phone = normalizeOptional(req.Phone)

	if err := s.repo.Create(ctx, lecturer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lecturer")
	}
	return lecturer, nil
}

// Update modifies an existing lecturer.
func (s *LecturerService) Update(ctx context.Context, id string, req UpdateLecturerRequest) (*models.Lecturer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lecturer payload")
	}

	lecturer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecturer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturer")
	}

	if err := s.ensureDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueFields(ctx, req.Email, req.StaffCode, id); err != nil {
		return nil, err
	}

	lecturer.Email = strings.TrimSpace(req.Email)
	lecturer.FullName = strings.TrimSpace(req.FullName)
	lecturer.DepartmentID = req.DepartmentID
	lecturer.StaffCode = normalizeOptional(req.StaffCode)
	lecturer.Degree = normalizeOptional(req.Degree)
	lecturer.Phone = normalizeOptional(req.Phone)
	if req.Active != nil {
		lecturer.Active = *req.Active
	}

	if err := s.repo.Update(ctx, lecturer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lecturer")
	}
	return lecturer, nil
}

// Deactivate marks a lecturer inactive. Existing sections and guidance
// tasks keep their reference for historical reports.
func (s *LecturerService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "lecturer not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturer")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate lecturer")
	}
	return nil
}

func (s *LecturerService) ensureDepartment(ctx context.Context, departmentID string) error {
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrBrokenReference, "department does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department")
	}
	return nil
}

func (s *LecturerService) ensureUniqueFields(ctx context.Context, email string, staffCode *string, excludeID string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "email already used")
	}
	if staffCode != nil {
		trimmed := strings.TrimSpace(*staffCode)
		if trimmed != "" {
			exists, err = s.repo.ExistsByStaffCode(ctx, trimmed, excludeID)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check staff code uniqueness")
			}
			if exists {
				return appErrors.Clone(appErrors.ErrConflict, "staff code already used")
			}
		}
	}
	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
