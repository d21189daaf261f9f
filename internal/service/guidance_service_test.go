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

type mockGuidanceRepo struct {
	items   map[string]*models.GuidanceTask
	deleted []string
}

func (m *mockGuidanceRepo) List(ctx context.Context, filter models.GuidanceFilter) ([]models.GuidanceTask, int, error) {
	result := make([]models.GuidanceTask, 0, len(m.items))
	for _, task := range m.items {
		result = append(result, *task)
	}
	return result, len(result), nil
}

func (m *mockGuidanceRepo) FindByID(ctx context.Context, id string) (*models.GuidanceTask, error) {
	if task, ok := m.items[id]; ok {
		cp := *task
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGuidanceRepo) Create(ctx context.Context, task *models.GuidanceTask) error {
	if m.items == nil {
		m.items = make(map[string]*models.GuidanceTask)
	}
	if task.ID == "" {
		task.ID = "generated"
	}
	cp := *task
	m.items[task.ID] = &cp
	return nil
}

func (m *mockGuidanceRepo) Update(ctx context.Context, task *models.GuidanceTask) error {
	cp := *task
	m.items[task.ID] = &cp
	return nil
}

func (m *mockGuidanceRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func newGuidanceFixture() (*GuidanceService, *mockGuidanceRepo, *recordingInvalidator) {
	repo := &mockGuidanceRepo{}
	cache := &recordingInvalidator{}
	lecturers := stubLecturers{ids: map[string]bool{"lec-1": true}}
	svc := NewGuidanceService(repo, lecturers, cache, workload.DefaultPolicy(), nil, nil)
	return svc, repo, cache
}

func TestGuidanceServiceCreateGraduationProject(t *testing.T) {
	svc, repo, cache := newGuidanceFixture()

	task, err := svc.Create(context.Background(), GuidanceTaskRequest{
		LecturerID:   "lec-1",
		AcademicYear: "2025-2026",
		Kind:         "GRADUATION_PROJECT",
		Content:      "Hướng dẫn đồ án tốt nghiệp",
		Credits:      3,
		StudentCount: 5,
	})
	require.NoError(t, err)
	// 3 credits x 5 students x 2.0 factor.
	assert.InDelta(t, 30.0, task.ComputedHours, 1e-9)
	assert.Equal(t, models.GuidanceGraduationProject, task.Kind)
	assert.Len(t, repo.items, 1)
	assert.Equal(t, []string{"workload:*"}, cache.patterns)
}

func TestGuidanceServiceCreateInternshipKeepsExactHours(t *testing.T) {
	svc, _, _ := newGuidanceFixture()

	task, err := svc.Create(context.Background(), GuidanceTaskRequest{
		LecturerID:   "lec-1",
		AcademicYear: "2025-2026",
		Kind:         "INTERNSHIP",
		Credits:      1.5,
		StudentCount: 7,
	})
	require.NoError(t, err)
	// 1.5 x 7 x 0.8 = 8.4 stored without rounding.
	assert.InDelta(t, 8.4, task.ComputedHours, 1e-9)
}

func TestGuidanceServiceCreateValidation(t *testing.T) {
	svc, _, _ := newGuidanceFixture()

	_, err := svc.Create(context.Background(), GuidanceTaskRequest{
		LecturerID:   "lec-1",
		AcademicYear: "2025-2026",
		Kind:         "SOMETHING_ELSE",
		Credits:      3,
		StudentCount: 5,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGuidanceServiceCreateUnknownLecturer(t *testing.T) {
	svc, _, _ := newGuidanceFixture()

	_, err := svc.Create(context.Background(), GuidanceTaskRequest{
		LecturerID:   "missing",
		AcademicYear: "2025-2026",
		Kind:         "INTERNSHIP",
		Credits:      2,
		StudentCount: 3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBrokenReference.Code, appErrors.FromError(err).Code)
}

func TestGuidanceServiceUpdateRecomputesHours(t *testing.T) {
	svc, repo, _ := newGuidanceFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, GuidanceTaskRequest{
		LecturerID:   "lec-1",
		AcademicYear: "2025-2026",
		Kind:         "GRADUATION_PROJECT",
		Credits:      3,
		StudentCount: 5,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, task.ID, GuidanceTaskRequest{
		LecturerID:   "lec-1",
		AcademicYear: "2025-2026",
		Kind:         "INTERNSHIP",
		Credits:      3,
		StudentCount: 5,
	})
	require.NoError(t, err)
	assert.InDelta(t, 12.0, updated.ComputedHours, 1e-9)
	assert.Len(t, repo.items, 1)
}

func TestGuidanceServiceDelete(t *testing.T) {
	svc, repo, cache := newGuidanceFixture()
	ctx := context.Background()

	task, err := svc.Create(ctx, GuidanceTaskRequest{
		LecturerID:   "lec-1",
		AcademicYear: "2025-2026",
		Kind:         "INTERNSHIP",
		Credits:      2,
		StudentCount: 4,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, task.ID))
	assert.Equal(t, []string{task.ID}, repo.deleted)
	assert.Len(t, cache.patterns, 2)

	err = svc.Delete(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
