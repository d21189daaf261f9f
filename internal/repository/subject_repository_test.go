package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-adp-api/internal/models"
)

func newSubjectRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubjectRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM subjects WHERE LOWER(code) = LOWER($1) AND department_id = $2 LIMIT 1")).
		WithArgs("IT4409", "d1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "IT4409", "d1", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO subjects").
		WithArgs(sqlmock.AnyArg(), "IT4409", "Web Technology", "d1", 3, 30, 0, 15, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO subjects").
		WithArgs(sqlmock.AnyArg(), "IT4785", "Mobile Development", "d1", 2, 20, 10, 15, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rows := []models.SubjectImportRow{
		{Code: "IT4409", Name: "Web Technology", Credits: 3, TheoryPeriods: 30, PracticePeriods: 15},
		{Code: "IT4785", Name: "Mobile Development", Credits: 2, TheoryPeriods: 20, DiscussPeriods: 10, PracticePeriods: 15},
	}
	count, err := repo.BulkUpsert(context.Background(), "d1", rows)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryBulkUpsertEmpty(t *testing.T) {
	db, _, cleanup := newSubjectRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	count, err := repo.BulkUpsert(context.Background(), "d1", nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}
