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

func newGuidanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestGuidanceRepositoryList(t *testing.T) {
	db, mock, cleanup := newGuidanceRepoMock(t)
	defer cleanup()
	repo := NewGuidanceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "lecturer_id", "academic_year", "kind", "content", "credits", "student_count", "computed_hours", "created_at", "updated_at"}).
		AddRow("g1", "l1", "2024-2025", "GRADUATION_PROJECT", "Đồ án tốt nghiệp K65", 3.0, 5, 30.0, now, now)

	mock.ExpectQuery("SELECT (.+) FROM guidance_tasks WHERE 1=1 AND lecturer_id = \\$1").
		WithArgs("l1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM guidance_tasks WHERE 1=1 AND lecturer_id = $1")).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.GuidanceFilter{LecturerID: "l1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 30.0, list[0].ComputedHours)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuidanceRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newGuidanceRepoMock(t)
	defer cleanup()
	repo := NewGuidanceRepository(db)

	mock.ExpectExec("INSERT INTO guidance_tasks").
		WillReturnResult(sqlmock.NewResult(1, 1))

	task := &models.GuidanceTask{
		LecturerID:    "l1",
		AcademicYear:  "2024-2025",
		Kind:          models.GuidanceInternship,
		Credits:       2,
		StudentCount:  10,
		ComputedHours: 16.0,
	}
	require.NoError(t, repo.Create(context.Background(), task))
	assert.NotEmpty(t, task.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM guidance_tasks WHERE id = $1")).
		WithArgs(task.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), task.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
