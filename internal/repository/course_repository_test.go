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

	"github.com/attendly/attendly-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCourseRepositoryListByOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "course_code", "professor", "slots", "target_percentage", "color", "created_at", "updated_at"}).
		AddRow("course-1", "owner-1", "Physics", "PHY101", "", []byte(`[{"days":["Mon"],"start_time":"09:00","end_time":"10:00"}]`), 75, "", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, course_code, professor, slots, target_percentage, color, created_at, updated_at FROM courses WHERE owner_id = $1 ORDER BY created_at ASC")).
		WithArgs("owner-1").
		WillReturnRows(rows)

	courses, err := repo.ListByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Physics", courses[0].Name)
	require.Len(t, courses[0].Slots, 1)
	assert.Equal(t, []string{"Mon"}, courses[0].Slots[0].Days)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateAssignsIdentity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WithArgs(sqlmock.AnyArg(), "owner-1", "Physics", "PHY101", "", sqlmock.AnyArg(), 75, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{
		OwnerID:    "owner-1",
		Name:       "Physics",
		CourseCode: "PHY101",
		Slots:      models.SlotList{{Days: []string{"Mon"}, StartTime: "09:00", EndTime: "10:00"}},
	}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, models.DefaultTargetPercentage, course.TargetPercentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateScopedByOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses")).
		WithArgs("Physics", "PHY101", "Dr. Rao", sqlmock.AnyArg(), 80, "", sqlmock.AnyArg(), "course-1", "owner-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	course := &models.Course{
		ID:               "course-1",
		OwnerID:          "owner-1",
		Name:             "Physics",
		CourseCode:       "PHY101",
		Professor:        "Dr. Rao",
		TargetPercentage: 80,
		Slots:            models.SlotList{},
	}
	require.NoError(t, repo.Update(context.Background(), course))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateMissingRowIsNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	course := &models.Course{ID: "missing", OwnerID: "owner-1", Name: "Physics", Slots: models.SlotList{}}
	err := repo.Update(context.Background(), course)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositorySaveBatchIsTransactional(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	creates := []models.Course{{OwnerID: "owner-1", Name: "Chemistry"}}
	updates := []models.Course{{ID: "course-1", OwnerID: "owner-1", Name: "Physics", Slots: models.SlotList{}}}
	require.NoError(t, repo.SaveBatch(context.Background(), creates, updates))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositorySaveBatchRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	creates := []models.Course{{OwnerID: "owner-1", Name: "Chemistry"}}
	err := repo.SaveBatch(context.Background(), creates, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDeleteCascadesAttendance(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance_marks WHERE course_id = $1 AND owner_id = $2")).
		WithArgs("course-1", "owner-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses WHERE id = $1 AND owner_id = $2")).
		WithArgs("course-1", "owner-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "owner-1", "course-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryClearByOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses WHERE owner_id = $1")).
		WithArgs("owner-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.ClearByOwner(context.Background(), "owner-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
