package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/attendly/attendly-api/internal/models"
)

// AttendanceRepository handles persistence for attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = "id, owner_id, course_id, date, status, notes, created_at, updated_at"

// Upsert writes a mark for (owner, course, date). An existing mark for the
// triple keeps its identity and gets the new status, notes and timestamp.
// The lookup-then-write pair is one statement, so concurrent upserts for
// the same key cannot interleave.
func (r *AttendanceRepository) Upsert(ctx context.Context, mark *models.AttendanceMark) (*models.AttendanceMark, error) {
	now := time.Now().UTC()
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	if mark.CreatedAt.IsZero() {
		mark.CreatedAt = now
	}
	mark.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO attendance_marks (id, owner_id, course_id, date, status, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (owner_id, course_id, date)
DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
RETURNING %s`, attendanceColumns)

	var stored models.AttendanceMark
	if err := r.db.GetContext(ctx, &stored, query,
		mark.ID, mark.OwnerID, mark.CourseID, mark.Date, mark.Status, mark.Notes,
		mark.CreatedAt, mark.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance mark: %w", err)
	}
	return &stored, nil
}

// FindByOwnerCourseDate performs the compound-key lookup.
func (r *AttendanceRepository) FindByOwnerCourseDate(ctx context.Context, ownerID, courseID string, date time.Time) (*models.AttendanceMark, error) {
	query := fmt.Sprintf("SELECT %s FROM attendance_marks WHERE owner_id = $1 AND course_id = $2 AND date = $3", attendanceColumns)
	var mark models.AttendanceMark
	if err := r.db.GetContext(ctx, &mark, query, ownerID, courseID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find attendance mark: %w", err)
	}
	return &mark, nil
}

// ListByCourse returns an owner's marks for one course with the filter applied.
func (r *AttendanceRepository) ListByCourse(ctx context.Context, ownerID string, filter models.AttendanceFilter) ([]models.AttendanceMark, int, error) {
	base := "FROM attendance_marks WHERE owner_id = $1 AND course_id = $2"
	args := []interface{}{ownerID, filter.CourseID}

	var conditions []string
	if filter.Status != nil && filter.Status.Valid() {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY date %s LIMIT %d OFFSET %d", attendanceColumns, base, order, size, offset)
	var marks []models.AttendanceMark
	if err := r.db.SelectContext(ctx, &marks, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance marks: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance marks: %w", err)
	}
	return marks, total, nil
}

// Delete removes a single mark owned by the caller.
func (r *AttendanceRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM attendance_marks WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete attendance mark: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearByOwner removes every mark the owner has.
func (r *AttendanceRepository) ClearByOwner(ctx context.Context, ownerID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM attendance_marks WHERE owner_id = $1", ownerID); err != nil {
		return fmt.Errorf("clear attendance marks: %w", err)
	}
	return nil
}
