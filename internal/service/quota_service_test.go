package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adp-api/internal/workload"
	appErrors "github.com/noah-isme/uni-adp-api/pkg/errors"
)

func newQuotaFixture() (*QuotaService, *mockQuotaRepo, *recordingInvalidator) {
	repo := &mockQuotaRepo{}
	cache := &recordingInvalidator{}
	lecturers := stubLecturers{ids: map[string]bool{"lec-1": true}}
	svc := NewQuotaService(repo, lecturers, cache, workload.DefaultPolicy(), nil, nil)
	return svc, repo, cache
}

func TestQuotaServiceGetReturnsDefault(t *testing.T) {
	svc, _, _ := newQuotaFixture()

	quota, err := svc.Get(context.Background(), "lec-1", "2025-2026")
	require.NoError(t, err)
	assert.InDelta(t, 270.0, quota.StandardQuota, 1e-9)
	assert.Zero(t, quota.ReductionHours)
	assert.Empty(t, quota.ID)
}

func TestQuotaServiceSetAndGet(t *testing.T) {
	svc, repo, cache := newQuotaFixture()
	ctx := context.Background()

	reason := "Chủ nhiệm khoa"
	quota, err := svc.Set(ctx, QuotaRequest{
		LecturerID:      "lec-1",
		AcademicYear:    "2025-2026",
		StandardQuota:   280,
		ReductionHours:  60,
		ReductionReason: &reason,
	})
	require.NoError(t, err)
	assert.InDelta(t, 280.0, quota.StandardQuota, 1e-9)
	assert.Len(t, repo.upserted, 1)
	assert.Equal(t, []string{"workload:*"}, cache.patterns)

	stored, err := svc.Get(ctx, "lec-1", "2025-2026")
	require.NoError(t, err)
	assert.InDelta(t, 60.0, stored.ReductionHours, 1e-9)
	require.NotNil(t, stored.ReductionReason)
	assert.Equal(t, reason, *stored.ReductionReason)
}

func TestQuotaServiceSetZeroFallsBackToDefault(t *testing.T) {
	svc, _, _ := newQuotaFixture()

	quota, err := svc.Set(context.Background(), QuotaRequest{
		LecturerID:     "lec-1",
		AcademicYear:   "2025-2026",
		StandardQuota:  0,
		ReductionHours: 20,
	})
	require.NoError(t, err)
	assert.InDelta(t, 270.0, quota.StandardQuota, 1e-9)
}

func TestQuotaServiceSetUnknownLecturer(t *testing.T) {
	svc, _, _ := newQuotaFixture()

	_, err := svc.Set(context.Background(), QuotaRequest{
		LecturerID:   "missing",
		AcademicYear: "2025-2026",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBrokenReference.Code, appErrors.FromError(err).Code)
}

func TestQuotaServiceDeleteReverts(t *testing.T) {
	svc, repo, _ := newQuotaFixture()
	ctx := context.Background()

	_, err := svc.Set(ctx, QuotaRequest{
		LecturerID:    "lec-1",
		AcademicYear:  "2025-2026",
		StandardQuota: 300,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "lec-1", "2025-2026"))
	assert.Equal(t, []string{"lec-1:2025-2026"}, repo.deleted)

	quota, err := svc.Get(ctx, "lec-1", "2025-2026")
	require.NoError(t, err)
	assert.InDelta(t, 270.0, quota.StandardQuota, 1e-9)
}
