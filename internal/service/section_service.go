package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-adp-api/internal/models"
	"github.com/noah-isme/uni-adp-api/internal/schedule"
	"github.com/noah-isme/uni-adp-api/internal/workload"
	appErrors "github.com/noah-isme/uni-adp-api/pkg/errors"
)

type sectionRepository interface {
	List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.SectionDetail, error)
	ListPlacements(ctx context.Context, semesterID string) ([]models.SectionPlacement, error)
	Create(ctx context.Context, section *models.CourseSection) error
	Update(ctx context.Context, section *models.CourseSection) error
	Delete(ctx context.Context, id string) error
	DeleteBySemester(ctx context.Context, semesterID string) (int64, error)
}

// sectionRefs bundles the lookups used to verify foreign references.
type sectionRefs struct {
	Subjects  subjectRepository2
	Classes   classLookup
	Lecturers lecturerLookup
	Depts     subjectDepartmentRepository
	Semesters semesterLookup
	Rooms     roomLookup
}

type subjectRepository2 interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type classLookup interface {
	FindByID(ctx context.Context, id string) (*models.TeachingClass, error)
}

type lecturerLookup interface {
	FindByID(ctx context.Context, id string) (*models.Lecturer, error)
}

type semesterLookup interface {
	FindByID(ctx context.Context, id string) (*models.Semester, error)
}

type roomLookup interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type workloadCacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SectionPlacementRequest is the optional timetable slot of a section.
// Either all four fields are present or the section stays unplaced.
type SectionPlacementRequest struct {
	DayOfWeek   int    `json:"day_of_week" validate:"min=1,max=7"`
	StartPeriod int    `json:"start_period" validate:"min=1"`
	PeriodCount int    `json:"period_count" validate:"min=1"`
	RoomID      string `json:"room_id" validate:"required"`
}

// SectionRequest represents payload for creating or updating sections.
type SectionRequest struct {
	SubjectID    string `json:"subject_id" validate:"required"`
	ClassID      string `json:"class_id" validate:"required"`
	LecturerID   string `json:"lecturer_id" validate:"required"`
	DepartmentID string `json:"department_id" validate:"required"`
	SemesterID   string `json:"semester_id" validate:"required"`

	StudentCount    int `json:"student_count" validate:"min=1"`
	TheoryPeriods   int `json:"theory_periods" validate:"min=0"`
	ExercisePeriods int `json:"exercise_periods" validate:"min=0"`
	DiscussPeriods  int `json:"discuss_periods" validate:"min=0"`
	PracticePeriods int `json:"practice_periods" validate:"min=0"`

	Placement *SectionPlacementRequest `json:"placement,omitempty"`
}

// ConflictCheckRequest describes a candidate placement to check without persisting.
type ConflictCheckRequest struct {
	SectionID   string `json:"section_id,omitempty"`
	SemesterID  string `json:"semester_id" validate:"required"`
	LecturerID  string `json:"lecturer_id" validate:"required"`
	ClassID     string `json:"class_id" validate:"required"`
	RoomID      string `json:"room_id" validate:"required"`
	DayOfWeek   int    `json:"day_of_week" validate:"min=1,max=7"`
	StartPeriod int    `json:"start_period" validate:"min=1"`
	PeriodCount int    `json:"period_count" validate:"min=1"`
}

// ConflictCheckResult reports the outcome of a conflict check.
// EntityLabel names the colliding slot: the class of the occupying
// section for lecturer and room conflicts, the subject the class is
// already attending for class conflicts.
type ConflictCheckResult struct {
	Conflict    bool   `json:"conflict"`
	Kind        string `json:"kind,omitempty"`
	SectionID   string `json:"section_id,omitempty"`
	EntityID    string `json:"entity_id,omitempty"`
	EntityLabel string `json:"entity_label,omitempty"`
	Message     string `json:"message,omitempty"`
}

// SectionSchedulingConfig carries timetable bounds for validation.
type SectionSchedulingConfig struct {
	AllowSunday   bool
	PeriodsPerDay int
}

// SectionService orchestrates course section writes: reference checks,
// timetable conflict detection, and standard-hour computation. Hours are
// computed once per write from the policy in force and stored alongside
// the policy version.
type SectionService struct {
	repo       sectionRepository
	refs       sectionRefs
	cache      workloadCacheInvalidator
	policy     workload.Policy
	scheduling SectionSchedulingConfig
	validator  *validator.Validate
	logger     *zap.Logger
}

// SectionServiceDeps bundles constructor dependencies.
type SectionServiceDeps struct {
	Repo       sectionRepository
	Subjects   subjectRepository2
	Classes    classLookup
	Lecturers  lecturerLookup
	Depts      subjectDepartmentRepository
	Semesters  semesterLookup
	Rooms      roomLookup
	Cache      workloadCacheInvalidator
	Policy     workload.Policy
	Scheduling SectionSchedulingConfig
	Validator  *validator.Validate
	Logger     *zap.Logger
}

// NewSectionService constructs a SectionService.
func NewSectionService(deps SectionServiceDeps) *SectionService {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Scheduling.PeriodsPerDay <= 0 {
		deps.Scheduling.PeriodsPerDay = 12
	}
	return &SectionService{
		repo: deps.Repo,
		refs: sectionRefs{
			Subjects:  deps.Subjects,
			Classes:   deps.Classes,
			Lecturers: deps.Lecturers,
			Depts:     deps.Depts,
			Semesters: deps.Semesters,
			Rooms:     deps.Rooms,
		},
		cache:      deps.Cache,
		policy:     deps.Policy,
		scheduling: deps.Scheduling,
		validator:  deps.Validator,
		logger:     deps.Logger,
	}
}

// List returns section details plus pagination data.
func (s *SectionService) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, *models.Pagination, error) {
	sections, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a section by id.
func (s *SectionService) Get(ctx context.Context, id string) (*models.SectionDetail, error) {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	return section, nil
}

// Create validates, checks conflicts, computes hours, and persists a new
// section.
func (s *SectionService) Create(ctx context.Context, req SectionRequest) (*models.CourseSection, error) {
	section, err := s.prepare(ctx, req, "")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	s.invalidateWorkloadCache(ctx)
	s.logger.Info("section created",
		zap.String("section_id", section.ID),
		zap.String("lecturer_id", section.LecturerID),
		zap.Float64("standard_hours", section.StandardHours))
	return section, nil
}

// Update validates, re-checks conflicts excluding the section's own slot,
// recomputes hours under the current policy, and persists.
func (s *SectionService) Update(ctx context.Context, id string, req SectionRequest) (*models.CourseSection, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	section, err := s.prepare(ctx, req, id)
	if err != nil {
		return nil, err
	}
	section.ID = id
	section.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section")
	}
	s.invalidateWorkloadCache(ctx)
	return section, nil
}

// Delete removes a section.
func (s *SectionService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}
	s.invalidateWorkloadCache(ctx)
	return nil
}

// PurgeSemester deletes every section of a semester and returns the count.
func (s *SectionService) PurgeSemester(ctx context.Context, semesterID string) (int64, error) {
	if _, err := s.refs.Semesters.FindByID(ctx, semesterID); err != nil {
		if err == sql.ErrNoRows {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	affected, err := s.repo.DeleteBySemester(ctx, semesterID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge semester sections")
	}
	s.invalidateWorkloadCache(ctx)
	s.logger.Info("semester sections purged", zap.String("semester_id", semesterID), zap.Int64("count", affected))
	return affected, nil
}

// CheckConflicts tests a candidate placement without writing anything.
func (s *SectionService) CheckConflicts(ctx context.Context, req ConflictCheckRequest) (*ConflictCheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}
	day := schedule.DayOfWeek(req.DayOfWeek)
	if !day.Valid(s.scheduling.AllowSunday) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day of week is not schedulable")
	}
	if req.StartPeriod+req.PeriodCount-1 > s.scheduling.PeriodsPerDay {
		return nil, appErrors.Clone(appErrors.ErrValidation, "placement exceeds periods per day")
	}

	candidate := schedule.Placement{
		SectionID:   req.SectionID,
		LecturerID:  req.LecturerID,
		RoomID:      req.RoomID,
		ClassID:     req.ClassID,
		Day:         day,
		StartPeriod: req.StartPeriod,
		PeriodCount: req.PeriodCount,
	}
	result, err := s.checkAgainstSnapshot(ctx, req.SemesterID, candidate, req.SectionID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// prepare runs the full write-path pipeline shared by Create and Update:
// payload validation, reference checks, conflict detection against a fresh
// placement snapshot, and hour computation.
func (s *SectionService) prepare(ctx context.Context, req SectionRequest, excludeID string) (*models.CourseSection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	if req.TheoryPeriods+req.ExercisePeriods+req.DiscussPeriods+req.PracticePeriods == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "section must have at least one period")
	}

	if err := s.ensureReferences(ctx, req); err != nil {
		return nil, err
	}

	section := &models.CourseSection{
		SubjectID:       req.SubjectID,
		ClassID:         req.ClassID,
		LecturerID:      req.LecturerID,
		DepartmentID:    req.DepartmentID,
		SemesterID:      req.SemesterID,
		StudentCount:    req.StudentCount,
		TheoryPeriods:   req.TheoryPeriods,
		ExercisePeriods: req.ExercisePeriods,
		DiscussPeriods:  req.DiscussPeriods,
		PracticePeriods: req.PracticePeriods,
	}

	if req.Placement != nil {
		day := schedule.DayOfWeek(req.Placement.DayOfWeek)
		if !day.Valid(s.scheduling.AllowSunday) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "day of week is not schedulable")
		}
		if req.Placement.StartPeriod+req.Placement.PeriodCount-1 > s.scheduling.PeriodsPerDay {
			return nil, appErrors.Clone(appErrors.ErrValidation, "placement exceeds periods per day")
		}
		if _, err := s.refs.Rooms.FindByID(ctx, req.Placement.RoomID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrBrokenReference, "room does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room")
		}

		candidate := schedule.Placement{
			SectionID:   excludeID,
			LecturerID:  req.LecturerID,
			RoomID:      req.Placement.RoomID,
			ClassID:     req.ClassID,
			Day:         day,
			StartPeriod: req.Placement.StartPeriod,
			PeriodCount: req.Placement.PeriodCount,
		}
		result, err := s.checkAgainstSnapshot(ctx, req.SemesterID, candidate, excludeID)
		if err != nil {
			return nil, err
		}
		if result.Conflict {
			return nil, appErrors.Clone(appErrors.ErrScheduleConflict, result.Message)
		}

		dayVal := req.Placement.DayOfWeek
		startVal := req.Placement.StartPeriod
		countVal := req.Placement.PeriodCount
		roomVal := req.Placement.RoomID
		section.DayOfWeek = &dayVal
		section.StartPeriod = &startVal
		section.PeriodCount = &countVal
		section.RoomID = &roomVal
	}

	periods := workload.PeriodCounts{
		Theory:   req.TheoryPeriods,
		Exercise: req.ExercisePeriods,
		Discuss:  req.DiscussPeriods,
		Practice: req.PracticePeriods,
	}
	section.Coefficient = workload.Coefficient(s.policy, req.StudentCount)
	section.StandardHours = workload.TeachingHours(s.policy, periods, req.StudentCount)
	section.PolicyVersion = s.policy.Version

	return section, nil
}

func (s *SectionService) checkAgainstSnapshot(ctx context.Context, semesterID string, candidate schedule.Placement, excludeID string) (*ConflictCheckResult, error) {
	stored, err := s.repo.ListPlacements(ctx, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placements")
	}

	existing := make([]schedule.Placement, 0, len(stored))
	for _, row := range stored {
		if !row.Placed() {
			continue
		}
		roomID := ""
		if row.RoomID != nil {
			roomID = *row.RoomID
		}
		existing = append(existing, schedule.Placement{
			SectionID:    row.ID,
			LecturerID:   row.LecturerID,
			RoomID:       roomID,
			ClassID:      row.ClassID,
			Day:          schedule.DayOfWeek(*row.DayOfWeek),
			StartPeriod:  *row.StartPeriod,
			PeriodCount:  *row.PeriodCount,
			ClassLabel:   row.ClassName,
			SubjectLabel: row.SubjectName,
		})
	}

	result := schedule.Check(candidate, existing, excludeID)
	if !result.Conflict {
		return &ConflictCheckResult{}, nil
	}
	return &ConflictCheckResult{
		Conflict:    true,
		Kind:        string(result.Kind),
		SectionID:   result.SectionID,
		EntityID:    result.EntityID,
		EntityLabel: result.EntityLabel,
		Message:     fmt.Sprintf("%s is already occupied by %s (section %s) in that slot", result.Kind, result.EntityLabel, result.SectionID),
	}, nil
}

func (s *SectionService) ensureReferences(ctx context.Context, req SectionRequest) error {
	check := func(err error, label string) error {
		if err == nil {
			return nil
		}
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrBrokenReference, label+" does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check "+label)
	}

	if _, err := s.refs.Subjects.FindByID(ctx, req.SubjectID); err != nil {
		return check(err, "subject")
	}
	if _, err := s.refs.Classes.FindByID(ctx, req.ClassID); err != nil {
		return check(err, "class")
	}
	if _, err := s.refs.Lecturers.FindByID(ctx, req.LecturerID); err != nil {
		return check(err, "lecturer")
	}
	if _, err := s.refs.Depts.FindByID(ctx, req.DepartmentID); err != nil {
		return check(err, "department")
	}
	if _, err := s.refs.Semesters.FindByID(ctx, req.SemesterID); err != nil {
		return check(err, "semester")
	}
	return nil
}

func (s *SectionService) invalidateWorkloadCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "workload:*"); err != nil {
		s.logger.Warn("failed to invalidate workload cache", zap.Error(err))
	}
}
