package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/attendly/attendly-api/internal/models"
	"github.com/attendly/attendly-api/internal/repository"
	appErrors "github.com/attendly/attendly-api/pkg/errors"
	"github.com/attendly/attendly-api/pkg/export"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, mark *models.AttendanceMark) (*models.AttendanceMark, error)
	ListByCourse(ctx context.Context, ownerID string, filter models.AttendanceFilter) ([]models.AttendanceMark, int, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type attendanceCourseLookup interface {
	FindByID(ctx context.Context, ownerID, id string) (*models.Course, error)
}

// AttendanceService records and queries per-course attendance marks.
type AttendanceService struct {
	repo      attendanceRepository
	courses   attendanceCourseLookup
	validator *validator.Validate
	logger    *zap.Logger
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(repo attendanceRepository, courses attendanceCourseLookup, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{
		repo:      repo,
		courses:   courses,
		validator: validate,
		logger:    logger,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// Mark records attendance for a course on a calendar date. Marking the same
// (course, date) again replaces the stored status and notes instead of
// creating a second mark.
func (s *AttendanceService) Mark(ctx context.Context, ownerID string, req models.MarkAttendanceRequest) (*models.AttendanceMark, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status "+string(req.Status))
	}

	if _, err := s.courses.FindByID(ctx, ownerID, req.CourseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}

	mark, err := s.repo.Upsert(ctx, &models.AttendanceMark{
		OwnerID:  ownerID,
		CourseID: req.CourseID,
		Date:     date,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attendance mark")
	}

	s.logger.Info("attendance marked",
		zap.String("owner_id", ownerID),
		zap.String("course_id", req.CourseID),
		zap.String("date", req.Date),
		zap.String("status", string(req.Status)))
	return mark, nil
}

// List returns marks for one owned course with optional status and date
// range filters.
func (s *AttendanceService) List(ctx context.Context, ownerID string, filter models.AttendanceFilter) ([]models.AttendanceMark, *models.Pagination, error) {
	if filter.CourseID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "course_id is required")
	}
	marks, total, err := s.repo.ListByCourse(ctx, ownerID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance marks")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 50
	}
	return marks, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Delete removes a single mark owned by the caller.
func (s *AttendanceService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance mark not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance mark")
	}
	return nil
}

// Export renders a course's attendance log as csv or pdf bytes.
func (s *AttendanceService) Export(ctx context.Context, ownerID, courseID, format string) ([]byte, string, error) {
	course, err := s.courses.FindByID(ctx, ownerID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	var marks []models.AttendanceMark
	for page := 1; ; page++ {
		batch, total, err := s.repo.ListByCourse(ctx, ownerID, models.AttendanceFilter{
			CourseID:  courseID,
			Page:      page,
			PageSize:  200,
			SortOrder: "asc",
		})
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance marks")
		}
		marks = append(marks, batch...)
		if len(batch) == 0 || len(marks) >= total {
			break
		}
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("Attendance Log %s", course.Name),
		Headers: []string{"Date", "Status", "Notes"},
	}
	for _, mark := range marks {
		notes := ""
		if mark.Notes != nil {
			notes = *mark.Notes
		}
		data.Rows = append(data.Rows, []string{
			mark.Date.Format("2006-01-02"),
			string(mark.Status),
			notes,
		})
	}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format "+format)
	}
}
