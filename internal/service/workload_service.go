package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-adp-api/internal/models"
	"github.com/noah-isme/uni-adp-api/internal/workload"
	appErrors "github.com/noah-isme/uni-adp-api/pkg/errors"
)

type workloadRepository interface {
	SumByLecturer(ctx context.Context, lecturerID, academicYear string) (*models.LecturerWorkloadSummary, error)
	SumByDepartment(ctx context.Context, departmentID, academicYear string) ([]models.LecturerWorkloadSummary, error)
}

// WorkloadService assembles per-lecturer and per-department hour summaries.
// Summaries sum the computed columns stored at write time; nothing is
// recomputed from current subject or policy data. Results are cached in
// Redis and invalidated whenever a section, guidance task, or quota
// changes.
type WorkloadService struct {
	repo     workloadRepository
	quotas   quotaRepository
	depts    subjectDepartmentRepository
	cache    *CacheService
	policy   workload.Policy
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewWorkloadService constructs a WorkloadService.
func NewWorkloadService(repo workloadRepository, quotas quotaRepository, depts subjectDepartmentRepository, cache *CacheService, policy workload.Policy, cacheTTL time.Duration, logger *zap.Logger) *WorkloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &WorkloadService{repo: repo, quotas: quotas, depts: depts, cache: cache, policy: policy, cacheTTL: cacheTTL, logger: logger}
}

// LecturerSummary returns the workload summary for one lecturer and year.
func (s *WorkloadService) LecturerSummary(ctx context.Context, lecturerID, academicYear string) (*models.LecturerWorkloadSummary, error) {
	key := fmt.Sprintf("workload:lecturer:%s:%s", lecturerID, academicYear)
	if s.cache != nil {
		var cached models.LecturerWorkloadSummary
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	summary, err := s.repo.SumByLecturer(ctx, lecturerID, academicYear)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecturer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum lecturer workload")
	}

	if err := s.applyQuota(ctx, summary); err != nil {
		return nil, err
	}
	summary.GeneratedAt = time.Now().UTC()

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache lecturer summary", zap.Error(err))
		}
	}
	return summary, nil
}

// DepartmentReport returns summaries for every active lecturer of a
// department.
func (s *WorkloadService) DepartmentReport(ctx context.Context, departmentID, academicYear string) (*models.DepartmentWorkloadReport, error) {
	key := fmt.Sprintf("workload:department:%s:%s", departmentID, academicYear)
	if s.cache != nil {
		var cached models.DepartmentWorkloadReport
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	department, err := s.depts.FindByID(ctx, departmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	summaries, err := s.repo.SumByDepartment(ctx, departmentID, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum department workload")
	}

	quotas, err := s.quotas.ListByYear(ctx, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quotas")
	}
	quotaByLecturer := make(map[string]models.WorkloadQuota, len(quotas))
	for _, q := range quotas {
		quotaByLecturer[q.LecturerID] = q
	}

	now := time.Now().UTC()
	for i := range summaries {
		s.fillTotals(&summaries[i], quotaByLecturer[summaries[i].LecturerID])
		summaries[i].GeneratedAt = now
	}

	report := &models.DepartmentWorkloadReport{
		DepartmentID:   department.ID,
		DepartmentName: department.Name,
		AcademicYear:   academicYear,
		Lecturers:      summaries,
		GeneratedAt:    now,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache department report", zap.Error(err))
		}
	}
	return report, nil
}

func (s *WorkloadService) applyQuota(ctx context.Context, summary *models.LecturerWorkloadSummary) error {
	quota, err := s.quotas.Find(ctx, summary.LecturerID, summary.AcademicYear)
	if err != nil {
		if err == sql.ErrNoRows {
			s.fillTotals(summary, models.WorkloadQuota{})
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quota")
	}
	s.fillTotals(summary, *quota)
	return nil
}

// fillTotals derives the quota-adjusted figures. A lecturer without a quota
// row gets the policy default; Balance is total hours minus the effective
// quota (quota less any reduction).
func (s *WorkloadService) fillTotals(summary *models.LecturerWorkloadSummary, quota models.WorkloadQuota) {
	standardQuota := quota.StandardQuota
	if standardQuota == 0 {
		standardQuota = s.policy.DefaultQuota
	}
	summary.StandardQuota = standardQuota
	summary.ReductionHours = quota.ReductionHours
	summary.TotalHours = summary.TeachingHours + summary.GuidanceHours
	summary.Balance = summary.TotalHours - (standardQuota - quota.ReductionHours)
}
