package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adp-api/internal/models"
	"github.com/noah-isme/uni-adp-api/internal/workload"
	appErrors "github.com/noah-isme/uni-adp-api/pkg/errors"
)

type guidanceRepository interface {
	List(ctx context.Context, filter models.GuidanceFilter) ([]models.GuidanceTask, int, error)
	FindByID(ctx context.Context, id string) (*models.GuidanceTask, error)
	Create(ctx context.Context, task *models.GuidanceTask) error
	Update(ctx context.Context, task *models.GuidanceTask) error
	Delete(ctx context.Context, id string) error
}

// GuidanceTaskRequest represents payload for creating or updating tasks.
type GuidanceTaskRequest struct {
	LecturerID   string  `json:"lecturer_id" validate:"required"`
	AcademicYear string  `json:"academic_year" validate:"required,max=20"`
	Kind         string  `json:"kind" validate:"required,oneof=GRADUATION_PROJECT INTERNSHIP"`
	Content      string  `json:"content" validate:"omitempty,max=500"`
	Credits      float64 `json:"credits" validate:"required,gt=0"`
	StudentCount int     `json:"student_count" validate:"required,min=1"`
}

// GuidanceService orchestrates supervision task writes. Hours are computed
// from the policy factor table at write time; the stored figure is exact,
// never rounded.
type GuidanceService struct {
	repo      guidanceRepository
	lecturers lecturerLookup
	cache     workloadCacheInvalidator
	policy    workload.Policy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGuidanceService constructs a GuidanceService.
func NewGuidanceService(repo guidanceRepository, lecturers lecturerLookup, cache workloadCacheInvalidator, policy workload.Policy, validate *validator.Validate, logger *zap.Logger) *GuidanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuidanceService{repo: repo, lecturers: lecturers, cache: cache, policy: policy, validator: validate, logger: logger}
}

// List returns guidance tasks plus pagination data.
func (s *GuidanceService) List(ctx context.Context, filter models.GuidanceFilter) ([]models.GuidanceTask, *models.Pagination, error) {
	tasks, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list guidance tasks")
	}
	return tasks, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a guidance task by id.
func (s *GuidanceService) Get(ctx context.Context, id string) (*models.GuidanceTask, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "guidance task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load guidance task")
	}
	return task, nil
}

// Create registers a new guidance task with computed hours.
func (s *GuidanceService) Create(ctx context.Context, req GuidanceTaskRequest) (*models.GuidanceTask, error) {
	task, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create guidance task")
	}
	s.invalidateWorkloadCache(ctx)
	return task, nil
}

// Update rewrites a guidance task, recomputing hours under the current
// policy.
func (s *GuidanceService) Update(ctx context.Context, id string, req GuidanceTaskRequest) (*models.GuidanceTask, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "guidance task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load guidance task")
	}

	task, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	task.ID = id
	task.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update guidance task")
	}
	s.invalidateWorkloadCache(ctx)
	return task, nil
}

// Delete removes a guidance task.
func (s *GuidanceService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "guidance task not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load guidance task")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete guidance task")
	}
	s.invalidateWorkloadCache(ctx)
	return nil
}

func (s *GuidanceService) prepare(ctx context.Context, req GuidanceTaskRequest) (*models.GuidanceTask, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid guidance payload")
	}

	kind := models.GuidanceKind(req.Kind)
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported guidance kind")
	}

	if _, err := s.lecturers.FindByID(ctx, req.LecturerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrBrokenReference, "lecturer does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check lecturer")
	}

	hours := workload.GuidanceHours(s.policy, kind == models.GuidanceGraduationProject, req.Credits, req.StudentCount)

	return &models.GuidanceTask{
		LecturerID:    req.LecturerID,
		AcademicYear:  strings.TrimSpace(req.AcademicYear),
		Kind:          kind,
		Content:       strings.TrimSpace(req.Content),
		Credits:       req.Credits,
		StudentCount:  req.StudentCount,
		ComputedHours: hours,
	}, nil
}

func (s *GuidanceService) invalidateWorkloadCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "workload:*"); err != nil {
		s.logger.Warn("failed to invalidate workload cache", zap.Error(err))
	}
}
