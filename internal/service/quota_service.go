package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adp-api/internal/models"
	"github.com/noah-isme/uni-adp-api/internal/workload"
	appErrors "github.com/noah-isme/uni-adp-api/pkg/errors"
)

type quotaRepository interface {
	Find(ctx context.Context, lecturerID, academicYear string) (*models.WorkloadQuota, error)
	ListByYear(ctx context.Context, academicYear string) ([]models.WorkloadQuota, error)
	Upsert(ctx context.Context, quota *models.WorkloadQuota) error
	Delete(ctx context.Context, lecturerID, academicYear string) error
}

// QuotaRequest represents payload for setting a lecturer's quota.
type QuotaRequest struct {
	LecturerID      string  `json:"lecturer_id" validate:"required"`
	AcademicYear    string  `json:"academic_year" validate:"required,max=20"`
	StandardQuota   float64 `json:"standard_quota" validate:"min=0"`
	ReductionHours  float64 `json:"reduction_hours" validate:"min=0"`
	ReductionReason *string `json:"reduction_reason" validate:"omitempty,max=255"`
}

// QuotaService manages workload quotas and reductions.
type QuotaService struct {
	repo      quotaRepository
	lecturers lecturerLookup
	cache     workloadCacheInvalidator
	policy    workload.Policy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQuotaService constructs a QuotaService.
func NewQuotaService(repo quotaRepository, lecturers lecturerLookup, cache workloadCacheInvalidator, policy workload.Policy, validate *validator.Validate, logger *zap.Logger) *QuotaService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotaService{repo: repo, lecturers: lecturers, cache: cache, policy: policy, validator: validate, logger: logger}
}

// Get returns the quota for a lecturer and year. When no row exists the
// policy default applies, so a synthetic record is returned instead of 404.
func (s *QuotaService) Get(ctx context.Context, lecturerID, academicYear string) (*models.WorkloadQuota, error) {
	quota, err := s.repo.Find(ctx, lecturerID, academicYear)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.WorkloadQuota{
				LecturerID:    lecturerID,
				AcademicYear:  academicYear,
				StandardQuota: s.policy.DefaultQuota,
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quota")
	}
	return quota, nil
}

// Set writes the quota row for a (lecturer, year) pair. A zero
// StandardQuota falls back to the policy default.
func (s *QuotaService) Set(ctx context.Context, req QuotaRequest) (*models.WorkloadQuota, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quota payload")
	}
	if _, err := s.lecturers.FindByID(ctx, req.LecturerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrBrokenReference, "lecturer does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check lecturer")
	}

	quota := &models.WorkloadQuota{
		LecturerID:      req.LecturerID,
		AcademicYear:    req.AcademicYear,
		StandardQuota:   req.StandardQuota,
		ReductionHours:  req.ReductionHours,
		ReductionReason: req.ReductionReason,
	}
	if quota.StandardQuota == 0 {
		quota.StandardQuota = s.policy.DefaultQuota
	}

	if err := s.repo.Upsert(ctx, quota); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save quota")
	}
	s.invalidateWorkloadCache(ctx)
	return quota, nil
}

// Delete removes the quota row, reverting the lecturer to the default.
func (s *QuotaService) Delete(ctx context.Context, lecturerID, academicYear string) error {
	if err := s.repo.Delete(ctx, lecturerID, academicYear); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete quota")
	}
	s.invalidateWorkloadCache(ctx)
	return nil
}

func (s *QuotaService) invalidateWorkloadCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "workload:*"); err != nil {
		s.logger.Warn("failed to invalidate workload cache", zap.Error(err))
	}
}
