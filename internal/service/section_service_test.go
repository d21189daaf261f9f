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

type mockSectionRepo struct {
	items        map[string]*models.CourseSection
	placements   []models.SectionPlacement
	classNames   map[string]string
	subjectNames map[string]string
	deleted      []string
	purged       []string
}

func (m *mockSectionRepo) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, int, error) {
	return nil, 0, nil
}

func (m *mockSectionRepo) FindByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	if section, ok := m.items[id]; ok {
		return &models.SectionDetail{CourseSection: *section}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSectionRepo) ListPlacements(ctx context.Context, semesterID string) ([]models.SectionPlacement, error) {
	return m.placements, nil
}

func (m *mockSectionRepo) Create(ctx context.Context, section *models.CourseSection) error {
	if m.items == nil {
		m.items = make(map[string]*models.CourseSection)
	}
	if section.ID == "" {
		section.ID = "generated"
	}
	cp := *section
	m.items[section.ID] = &cp
	if cp.Placed() {
		m.placements = append(m.placements, models.SectionPlacement{
			CourseSection: cp,
			ClassName:     m.classNames[cp.ClassID],
			SubjectName:   m.subjectNames[cp.SubjectID],
		})
	}
	return nil
}

func (m *mockSectionRepo) Update(ctx context.Context, section *models.CourseSection) error {
	cp := *section
	m.items[section.ID] = &cp
	return nil
}

func (m *mockSectionRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func (m *mockSectionRepo) DeleteBySemester(ctx context.Context, semesterID string) (int64, error) {
	m.purged = append(m.purged, semesterID)
	count := int64(len(m.items))
	m.items = map[string]*models.CourseSection{}
	return count, nil
}

type stubSubjects struct{ ids map[string]bool }

func (s stubSubjects) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s.ids[id] {
		return &models.Subject{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

type stubClasses struct{ ids map[string]bool }

func (s stubClasses) FindByID(ctx context.Context, id string) (*models.TeachingClass, error) {
	if s.ids[id] {
		return &models.TeachingClass{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

type stubLecturers struct{ ids map[string]bool }

func (s stubLecturers) FindByID(ctx context.Context, id string) (*models.Lecturer, error) {
	if s.ids[id] {
		return &models.Lecturer{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

type stubDepartments struct{ ids map[string]bool }

func (s stubDepartments) FindByID(ctx context.Context, id string) (*models.Department, error) {
	if s.ids[id] {
		return &models.Department{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

type stubSemesters struct{ ids map[string]bool }

func (s stubSemesters) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	if s.ids[id] {
		return &models.Semester{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

type stubRooms struct{ ids map[string]bool }

func (s stubRooms) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if s.ids[id] {
		return &models.Room{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

type recordingInvalidator struct{ patterns []string }

func (r *recordingInvalidator) DeleteByPattern(ctx context.Context, pattern string) error {
	r.patterns = append(r.patterns, pattern)
	return nil
}

func newSectionFixture() (*SectionService, *mockSectionRepo, *recordingInvalidator) {
	repo := &mockSectionRepo{
		classNames:   map[string]string{"cls-1": "CNTT-K65A", "cls-2": "CNTT-K65B"},
		subjectNames: map[string]string{"sub-1": "Giải tích 1"},
	}
	cache := &recordingInvalidator{}
	svc := NewSectionService(SectionServiceDeps{
		Repo:      repo,
		Subjects:  stubSubjects{ids: map[string]bool{"sub-1": true}},
		Classes:   stubClasses{ids: map[string]bool{"cls-1": true, "cls-2": true}},
		Lecturers: stubLecturers{ids: map[string]bool{"lec-1": true, "lec-2": true}},
		Depts:     stubDepartments{ids: map[string]bool{"dep-1": true}},
		Semesters: stubSemesters{ids: map[string]bool{"sem-1": true}},
		Rooms:     stubRooms{ids: map[string]bool{"room-1": true, "room-2": true}},
		Cache:     cache,
		Policy:    workload.DefaultPolicy(),
	})
	return svc, repo, cache
}

func baseSectionRequest() SectionRequest {
	return SectionRequest{
		SubjectID:       "sub-1",
		ClassID:         "cls-1",
		LecturerID:      "lec-1",
		DepartmentID:    "dep-1",
		SemesterID:      "sem-1",
		StudentCount:    45,
		TheoryPeriods:   30,
		PracticePeriods: 15,
	}
}

func TestSectionServiceCreateComputesHours(t *testing.T) {
	svc, repo, cache := newSectionFixture()

	section, err := svc.Create(context.Background(), baseSectionRequest())
	require.NoError(t, err)
	// 45 students fall in the 41-60 band; 45/20 gives 3 practice groups.
	assert.InDelta(t, 1.1, section.Coefficient, 1e-9)
	assert.InDelta(t, 94.5, section.StandardHours, 1e-9)
	assert.Equal(t, "2024A", section.PolicyVersion)
	assert.Len(t, repo.items, 1)
	assert.Equal(t, []string{"workload:*"}, cache.patterns)
}

func TestSectionServiceCreateBrokenReference(t *testing.T) {
	svc, _, _ := newSectionFixture()

	req := baseSectionRequest()
	req.SubjectID = "missing"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBrokenReference.Code, appErrors.FromError(err).Code)
	assert.Contains(t, appErrors.FromError(err).Message, "subject")
}

func TestSectionServiceCreateRequiresPeriods(t *testing.T) {
	svc, _, _ := newSectionFixture()

	req := baseSectionRequest()
	req.TheoryPeriods = 0
	req.PracticePeriods = 0
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func placedRequest(day, start, count int, room string) SectionRequest {
	req := baseSectionRequest()
	req.Placement = &SectionPlacementRequest{
		DayOfWeek:   day,
		StartPeriod: start,
		PeriodCount: count,
		RoomID:      room,
	}
	return req
}

func TestSectionServiceConflictDetection(t *testing.T) {
	svc, _, _ := newSectionFixture()
	ctx := context.Background()

	// lec-1 teaches cls-1 in room-1 on Wednesday periods 1-2.
	first, err := svc.Create(ctx, placedRequest(3, 1, 2, "room-1"))
	require.NoError(t, err)

	// Same lecturer, different room and class, overlapping periods 2-3.
	req := placedRequest(3, 2, 2, "room-2")
	req.ClassID = "cls-2"
	_, err = svc.Create(ctx, req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "lecturer")
	assert.Contains(t, appErr.Message, first.ID)
	assert.Contains(t, appErr.Message, "CNTT-K65A")

	// Different lecturer and class but the same room, still overlapping.
	req = placedRequest(3, 2, 2, "room-1")
	req.LecturerID = "lec-2"
	req.ClassID = "cls-2"
	_, err = svc.Create(ctx, req)
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "room")
	assert.Contains(t, appErrors.FromError(err).Message, "CNTT-K65A")

	// Same class taught by another lecturer elsewhere at the same time.
	// The message names the subject the class is already attending.
	req = placedRequest(3, 2, 2, "room-2")
	req.LecturerID = "lec-2"
	_, err = svc.Create(ctx, req)
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "class")
	assert.Contains(t, appErrors.FromError(err).Message, "Giải tích 1")

	// Adjacent block right after the first one is free.
	req = placedRequest(3, 3, 2, "room-1")
	_, err = svc.Create(ctx, req)
	require.NoError(t, err)
}

func TestSectionServiceUpdateExcludesOwnSlot(t *testing.T) {
	svc, repo, _ := newSectionFixture()
	ctx := context.Background()

	section, err := svc.Create(ctx, placedRequest(3, 1, 2, "room-1"))
	require.NoError(t, err)

	// Re-saving the same slot must not collide with itself.
	updated, err := svc.Update(ctx, section.ID, placedRequest(3, 1, 2, "room-1"))
	require.NoError(t, err)
	assert.Equal(t, section.ID, updated.ID)
	assert.Equal(t, section.CreatedAt, updated.CreatedAt)
	assert.Len(t, repo.items, 1)
}

func TestSectionServiceSundayGate(t *testing.T) {
	svc, _, _ := newSectionFixture()

	_, err := svc.Create(context.Background(), placedRequest(7, 1, 2, "room-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	allowed := NewSectionService(SectionServiceDeps{
		Repo:       &mockSectionRepo{},
		Subjects:   stubSubjects{ids: map[string]bool{"sub-1": true}},
		Classes:    stubClasses{ids: map[string]bool{"cls-1": true}},
		Lecturers:  stubLecturers{ids: map[string]bool{"lec-1": true}},
		Depts:      stubDepartments{ids: map[string]bool{"dep-1": true}},
		Semesters:  stubSemesters{ids: map[string]bool{"sem-1": true}},
		Rooms:      stubRooms{ids: map[string]bool{"room-1": true}},
		Policy:     workload.DefaultPolicy(),
		Scheduling: SectionSchedulingConfig{AllowSunday: true},
	})
	_, err = allowed.Create(context.Background(), placedRequest(7, 1, 2, "room-1"))
	require.NoError(t, err)
}

func TestSectionServicePlacementBounds(t *testing.T) {
	svc, _, _ := newSectionFixture()

	// Periods 11-13 run past the 12-period day.
	_, err := svc.Create(context.Background(), placedRequest(3, 11, 3, "room-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSectionServiceCheckConflictsDryRun(t *testing.T) {
	svc, _, _ := newSectionFixture()
	ctx := context.Background()

	section, err := svc.Create(ctx, placedRequest(3, 1, 2, "room-1"))
	require.NoError(t, err)

	result, err := svc.CheckConflicts(ctx, ConflictCheckRequest{
		SemesterID:  "sem-1",
		LecturerID:  "lec-1",
		ClassID:     "cls-2",
		RoomID:      "room-2",
		DayOfWeek:   3,
		StartPeriod: 2,
		PeriodCount: 2,
	})
	require.NoError(t, err)
	assert.True(t, result.Conflict)
	assert.Equal(t, "lecturer", result.Kind)
	assert.Equal(t, section.ID, result.SectionID)
	assert.Equal(t, "CNTT-K65A", result.EntityLabel)
	assert.Contains(t, result.Message, "CNTT-K65A")

	clear, err := svc.CheckConflicts(ctx, ConflictCheckRequest{
		SemesterID:  "sem-1",
		LecturerID:  "lec-2",
		ClassID:     "cls-2",
		RoomID:      "room-2",
		DayOfWeek:   4,
		StartPeriod: 1,
		PeriodCount: 2,
	})
	require.NoError(t, err)
	assert.False(t, clear.Conflict)
}

func TestSectionServicePurgeSemester(t *testing.T) {
	svc, repo, cache := newSectionFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, baseSectionRequest())
	require.NoError(t, err)

	count, err := svc.PurgeSemester(ctx, "sem-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, []string{"sem-1"}, repo.purged)
	assert.Contains(t, cache.patterns, "workload:*")

	_, err = svc.PurgeSemester(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
