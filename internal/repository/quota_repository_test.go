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

func newQuotaRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestQuotaRepositoryFind(t *testing.T) {
	db, mock, cleanup := newQuotaRepoMock(t)
	defer cleanup()
	repo := NewQuotaRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "lecturer_id", "academic_year", "standard_quota", "reduction_hours", "reduction_reason", "created_at", "updated_at"}).
		AddRow("q1", "l1", "2024-2025", 270.0, 30.0, "Trưởng bộ môn", now, now)

	mock.ExpectQuery("SELECT (.+) FROM workload_quotas WHERE lecturer_id = \\$1 AND academic_year = \\$2").
		WithArgs("l1", "2024-2025").
		WillReturnRows(rows)

	quota, err := repo.Find(context.Background(), "l1", "2024-2025")
	require.NoError(t, err)
	assert.Equal(t, 270.0, quota.StandardQuota)
	assert.Equal(t, 30.0, quota.ReductionHours)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuotaRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newQuotaRepoMock(t)
	defer cleanup()
	repo := NewQuotaRepository(db)

	mock.ExpectExec("INSERT INTO workload_quotas").
		WillReturnResult(sqlmock.NewResult(1, 1))

	quota := &models.WorkloadQuota{LecturerID: "l1", AcademicYear: "2024-2025", StandardQuota: 270}
	require.NoError(t, repo.Upsert(context.Background(), quota))
	assert.NotEmpty(t, quota.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM workload_quotas WHERE lecturer_id = $1 AND academic_year = $2")).
		WithArgs("l1", "2024-2025").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "l1", "2024-2025"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
