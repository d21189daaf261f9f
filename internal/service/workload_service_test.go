package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adp-api/internal/models"
	"github.com/noah-isme/uni-adp-api/internal/workload"
	appErrors "github.com/noah-isme/uni-adp-api/pkg/errors"
)

type mockWorkloadRepo struct {
	lecturerSums   map[string]*models.LecturerWorkloadSummary
	departmentSums []models.LecturerWorkloadSummary
	calls          int
}

func (m *mockWorkloadRepo) SumByLecturer(ctx context.Context, lecturerID, academicYear string) (*models.LecturerWorkloadSummary, error) {
	m.calls++
	if summary, ok := m.lecturerSums[lecturerID]; ok {
		cp := *summary
		cp.AcademicYear = academicYear
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockWorkloadRepo) SumByDepartment(ctx context.Context, departmentID, academicYear string) ([]models.LecturerWorkloadSummary, error) {
	return m.departmentSums, nil
}

type mockQuotaRepo struct {
	rows     map[string]*models.WorkloadQuota
	upserted []models.WorkloadQuota
	deleted  []string
}

func quotaKey(lecturerID, academicYear string) string {
	return lecturerID + ":" + academicYear
}

func (m *mockQuotaRepo) Find(ctx context.Context, lecturerID, academicYear string) (*models.WorkloadQuota, error) {
	if quota, ok := m.rows[quotaKey(lecturerID, academicYear)]; ok {
		cp := *quota
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockQuotaRepo) ListByYear(ctx context.Context, academicYear string) ([]models.WorkloadQuota, error) {
	result := make([]models.WorkloadQuota, 0, len(m.rows))
	for _, quota := range m.rows {
		if quota.AcademicYear == academicYear {
			result = append(result, *quota)
		}
	}
	return result, nil
}

func (m *mockQuotaRepo) Upsert(ctx context.Context, quota *models.WorkloadQuota) error {
	if m.rows == nil {
		m.rows = make(map[string]*models.WorkloadQuota)
	}
	cp := *quota
	m.rows[quotaKey(quota.LecturerID, quota.AcademicYear)] = &cp
	m.upserted = append(m.upserted, cp)
	return nil
}

func (m *mockQuotaRepo) Delete(ctx context.Context, lecturerID, academicYear string) error {
	delete(m.rows, quotaKey(lecturerID, academicYear))
	m.deleted = append(m.deleted, quotaKey(lecturerID, academicYear))
	return nil
}

func TestWorkloadLecturerSummaryDefaultQuota(t *testing.T) {
	repo := &mockWorkloadRepo{lecturerSums: map[string]*models.LecturerWorkloadSummary{
		"lec-1": {LecturerID: "lec-1", LecturerName: "Nguyễn Văn A", TeachingHours: 180, GuidanceHours: 40},
	}}
	svc := NewWorkloadService(repo, &mockQuotaRepo{}, stubDepartments{}, nil, workload.DefaultPolicy(), 0, nil)

	summary, err := svc.LecturerSummary(context.Background(), "lec-1", "2025-2026")
	require.NoError(t, err)
	assert.InDelta(t, 270.0, summary.StandardQuota, 1e-9)
	assert.InDelta(t, 220.0, summary.TotalHours, 1e-9)
	assert.InDelta(t, -50.0, summary.Balance, 1e-9)
	assert.False(t, summary.GeneratedAt.IsZero())
}

func TestWorkloadLecturerSummaryWithReduction(t *testing.T) {
	repo := &mockWorkloadRepo{lecturerSums: map[string]*models.LecturerWorkloadSummary{
		"lec-1": {LecturerID: "lec-1", TeachingHours: 250, GuidanceHours: 30},
	}}
	quotas := &mockQuotaRepo{rows: map[string]*models.WorkloadQuota{
		quotaKey("lec-1", "2025-2026"): {
			LecturerID:     "lec-1",
			AcademicYear:   "2025-2026",
			StandardQuota:  280,
			ReductionHours: 40,
		},
	}}
	svc := NewWorkloadService(repo, quotas, stubDepartments{}, nil, workload.DefaultPolicy(), 0, nil)

	summary, err := svc.LecturerSummary(context.Background(), "lec-1", "2025-2026")
	require.NoError(t, err)
	assert.InDelta(t, 280.0, summary.StandardQuota, 1e-9)
	assert.InDelta(t, 40.0, summary.ReductionHours, 1e-9)
	// 280 total against an effective quota of 240 leaves 40 surplus hours.
	assert.InDelta(t, 40.0, summary.Balance, 1e-9)
}

func TestWorkloadLecturerSummaryNotFound(t *testing.T) {
	svc := NewWorkloadService(&mockWorkloadRepo{}, &mockQuotaRepo{}, stubDepartments{}, nil, workload.DefaultPolicy(), 0, nil)

	_, err := svc.LecturerSummary(context.Background(), "missing", "2025-2026")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestWorkloadDepartmentReport(t *testing.T) {
	repo := &mockWorkloadRepo{departmentSums: []models.LecturerWorkloadSummary{
		{LecturerID: "lec-1", LecturerName: "Nguyễn Văn A", TeachingHours: 300, GuidanceHours: 20},
		{LecturerID: "lec-2", LecturerName: "Trần Thị B", TeachingHours: 100, GuidanceHours: 0},
	}}
	quotas := &mockQuotaRepo{rows: map[string]*models.WorkloadQuota{
		quotaKey("lec-2", "2025-2026"): {
			LecturerID:     "lec-2",
			AcademicYear:   "2025-2026",
			StandardQuota:  270,
			ReductionHours: 100,
		},
	}}
	svc := NewWorkloadService(repo, quotas, stubDepartments{ids: map[string]bool{"dep-1": true}}, nil, workload.DefaultPolicy(), 0, nil)

	report, err := svc.DepartmentReport(context.Background(), "dep-1", "2025-2026")
	require.NoError(t, err)
	require.Len(t, report.Lecturers, 2)
	assert.InDelta(t, 50.0, report.Lecturers[0].Balance, 1e-9)
	assert.InDelta(t, -70.0, report.Lecturers[1].Balance, 1e-9)
	assert.Equal(t, "2025-2026", report.AcademicYear)

	_, err = svc.DepartmentReport(context.Background(), "missing", "2025-2026")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
