package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/attendly/attendly-api/internal/models"
)

// ErrNotFound is returned when an owner-scoped lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// CourseRepository handles persistence for courses. Every query is scoped
// by the owner identity passed in explicitly; there is no ambient user.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = "id, owner_id, name, course_code, professor, slots, target_percentage, color, created_at, updated_at"

// ListByOwner returns all courses belonging to the owner.
func (r *CourseRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE owner_id = $1 ORDER BY created_at ASC", courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, ownerID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID loads one of the owner's courses.
func (r *CourseRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1 AND owner_id = $2", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Create inserts a new course, assigning identity and timestamps.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	prepareCourse(course)
	const query = `INSERT INTO courses (id, owner_id, name, course_code, professor, slots, target_percentage, color, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		course.ID, course.OwnerID, course.Name, course.CourseCode, course.Professor,
		course.Slots, course.TargetPercentage, course.Color, course.CreatedAt, course.UpdatedAt); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an owner's course in place.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses
SET name = $1, course_code = $2, professor = $3, slots = $4, target_percentage = $5, color = $6, updated_at = $7
WHERE id = $8 AND owner_id = $9`
	res, err := r.db.ExecContext(ctx, query,
		course.Name, course.CourseCode, course.Professor, course.Slots,
		course.TargetPercentage, course.Color, course.UpdatedAt, course.ID, course.OwnerID)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveBatch commits one reconciliation invocation atomically: all inserts
// and in-place updates succeed together or the batch rolls back, so a
// failure partway through never loses data silently.
func (r *CourseRepository) SaveBatch(ctx context.Context, creates, updates []models.Course) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course batch: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const insertQuery = `INSERT INTO courses (id, owner_id, name, course_code, professor, slots, target_percentage, color, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i := range creates {
		course := &creates[i]
		prepareCourse(course)
		if _, err := tx.ExecContext(ctx, insertQuery,
			course.ID, course.OwnerID, course.Name, course.CourseCode, course.Professor,
			course.Slots, course.TargetPercentage, course.Color, course.CreatedAt, course.UpdatedAt); err != nil {
			return fmt.Errorf("batch insert course %q: %w", course.Name, err)
		}
	}

	const updateQuery = `UPDATE courses
SET name = $1, course_code = $2, professor = $3, slots = $4, target_percentage = $5, color = $6, updated_at = $7
WHERE id = $8 AND owner_id = $9`
	now := time.Now().UTC()
	for i := range updates {
		course := &updates[i]
		course.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, updateQuery,
			course.Name, course.CourseCode, course.Professor, course.Slots,
			course.TargetPercentage, course.Color, course.UpdatedAt, course.ID, course.OwnerID); err != nil {
			return fmt.Errorf("batch update course %q: %w", course.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit course batch: %w", err)
	}
	committed = true
	return nil
}

// Delete removes an owner's course and cascades its attendance marks.
// Reconciliation never calls this; it updates replaced courses in place.
func (r *CourseRepository) Delete(ctx context.Context, ownerID, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course delete: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM attendance_marks WHERE course_id = $1 AND owner_id = $2", id, ownerID); err != nil {
		return fmt.Errorf("cascade attendance delete: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM courses WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit course delete: %w", err)
	}
	committed = true
	return nil
}

// ClearByOwner removes every course the owner has.
func (r *CourseRepository) ClearByOwner(ctx context.Context, ownerID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM courses WHERE owner_id = $1", ownerID); err != nil {
		return fmt.Errorf("clear courses: %w", err)
	}
	return nil
}

func prepareCourse(course *models.Course) {
	now := time.Now().UTC()
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	if course.TargetPercentage == 0 {
		course.TargetPercentage = models.DefaultTargetPercentage
	}
	if course.Slots == nil {
		course.Slots = models.SlotList{}
	}
}
