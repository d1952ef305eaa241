package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly-api/internal/models"
)

func TestAttendanceRepositoryUpsertKeepsIdentityOnConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "course_id", "date", "status", "notes", "created_at", "updated_at"}).
		AddRow("mark-1", "owner-1", "course-1", date, "absent", nil, time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance_marks")).
		WithArgs(sqlmock.AnyArg(), "owner-1", "course-1", date, models.AttendanceStatusAbsent, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	stored, err := repo.Upsert(context.Background(), &models.AttendanceMark{
		OwnerID:  "owner-1",
		CourseID: "course-1",
		Date:     date,
		Status:   models.AttendanceStatusAbsent,
	})
	require.NoError(t, err)
	assert.Equal(t, "mark-1", stored.ID, "conflict resolution keeps the stored identity")
	assert.Equal(t, models.AttendanceStatusAbsent, stored.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryFindByOwnerCourseDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "course_id", "date", "status", "notes", "created_at", "updated_at"}).
		AddRow("mark-1", "owner-1", "course-1", date, "present", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, course_id, date, status, notes, created_at, updated_at FROM attendance_marks WHERE owner_id = $1 AND course_id = $2 AND date = $3")).
		WithArgs("owner-1", "course-1", date).
		WillReturnRows(rows)

	mark, err := repo.FindByOwnerCourseDate(context.Background(), "owner-1", "course-1", date)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, mark.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryFindMissingIsNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, course_id, date, status, notes, created_at, updated_at FROM attendance_marks")).
		WithArgs("owner-1", "course-1", date).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByOwnerCourseDate(context.Background(), "owner-1", "course-1", date)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListByCourseFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	status := models.AttendanceStatusAbsent
	rows := sqlmock.NewRows([]string{"id", "owner_id", "course_id", "date", "status", "notes", "created_at", "updated_at"}).
		AddRow("mark-1", "owner-1", "course-1", time.Now(), "absent", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, course_id, date, status, notes, created_at, updated_at FROM attendance_marks WHERE owner_id = $1 AND course_id = $2 AND status = $3 ORDER BY date DESC")).
		WithArgs("owner-1", "course-1", status).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance_marks WHERE owner_id = $1 AND course_id = $2 AND status = $3")).
		WithArgs("owner-1", "course-1", status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	marks, total, err := repo.ListByCourse(context.Background(), "owner-1", models.AttendanceFilter{
		CourseID: "course-1",
		Status:   &status,
	})
	require.NoError(t, err)
	assert.Len(t, marks, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryDeleteScopedByOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance_marks WHERE id = $1 AND owner_id = $2")).
		WithArgs("mark-1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "intruder", "mark-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryClearByOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance_marks WHERE owner_id = $1")).
		WithArgs("owner-1").
		WillReturnResult(sqlmock.NewResult(0, 7))

	require.NoError(t, repo.ClearByOwner(context.Background(), "owner-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
