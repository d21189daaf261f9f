package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adp-api/internal/models"
)

func newSectionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sectionRowColumns() []string {
	return []string{
		"id", "subject_id", "class_id", "lecturer_id", "department_id", "semester_id",
		"student_count", "theory_periods", "exercise_periods", "discuss_periods", "practice_periods",
		"day_of_week", "start_period", "period_count", "room_id",
		"coefficient", "standard_hours", "policy_version", "created_at", "updated_at",
	}
}

func TestSectionRepositoryListPlacements(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(append(sectionRowColumns(), "class_name", "subject_name")).
		AddRow("s1", "sub1", "c1", "l1", "d1", "sem1",
			45, 3, 0, 0, 2,
			3, 1, 2, "r1",
			1.1, 11.5, "2024A", now, now,
			"CNTT-K65A", "Giải tích 1")

	mock.ExpectQuery("SELECT (.+) FROM course_sections cs\\s+JOIN teaching_classes tc (.+) JOIN subjects s (.+) WHERE cs.semester_id = \\$1 AND cs.day_of_week IS NOT NULL").
		WithArgs("sem1").
		WillReturnRows(rows)

	placements, err := repo.ListPlacements(context.Background(), "sem1")
	require.NoError(t, err)
	require.Len(t, placements, 1)
	assert.True(t, placements[0].Placed())
	assert.Equal(t, 11.5, placements[0].StandardHours)
	assert.Equal(t, "CNTT-K65A", placements[0].ClassName)
	assert.Equal(t, "Giải tích 1", placements[0].SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryFindByIDKeepsStoredHours(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	// Coefficient and standard hours are computed at write time; a read
	// must return the stored values untouched, not recompute them.
	now := time.Now()
	columns := append(sectionRowColumns(),
		"subject_name", "subject_code", "class_name", "lecturer_name", "room_code")
	rows := sqlmock.NewRows(columns).
		AddRow("s1", "sub1", "c1", "l1", "d1", "sem1",
			45, 30, 0, 0, 15,
			3, 1, 2, "r1",
			1.1, 94.5, "2024A", now, now,
			"Giải tích 1", "MAT101", "CNTT-K65A", "Nguyễn Văn An", "B1-301")

	mock.ExpectQuery("SELECT (.+) WHERE cs.id = \\$1").
		WithArgs("s1").
		WillReturnRows(rows)

	section, err := repo.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.InDelta(t, 1.1, section.Coefficient, 1e-9)
	assert.InDelta(t, 94.5, section.StandardHours, 1e-9)
	assert.Equal(t, "2024A", section.PolicyVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec("INSERT INTO course_sections").
		WillReturnResult(sqlmock.NewResult(1, 1))

	section := &models.CourseSection{
		SubjectID:       "sub1",
		ClassID:         "c1",
		LecturerID:      "l1",
		DepartmentID:    "d1",
		SemesterID:      "sem1",
		StudentCount:    45,
		TheoryPeriods:   3,
		PracticePeriods: 2,
		Coefficient:     1.1,
		StandardHours:   11.5,
		PolicyVersion:   "2024A",
	}
	require.NoError(t, repo.Create(context.Background(), section))
	assert.NotEmpty(t, section.ID)
	assert.False(t, section.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryDeleteBySemester(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_sections WHERE semester_id = $1")).
		WithArgs("sem1").
		WillReturnResult(sqlmock.NewResult(0, 7))

	affected, err := repo.DeleteBySemester(context.Background(), "sem1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
