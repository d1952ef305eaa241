package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/attendly/attendly-api/internal/models"
	"github.com/attendly/attendly-api/internal/repository"
	appErrors "github.com/attendly/attendly-api/pkg/errors"
)

type courseRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Course, error)
	FindByID(ctx context.Context, ownerID, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, ownerID, id string) error
}

// CourseService provides course CRUD and schedule lookups.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns all courses owned by the caller in creation order.
func (s *CourseService) List(ctx context.Context, ownerID string) ([]models.Course, error) {
	courses, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// ListOn returns the caller's courses that meet on the weekday of the
// given date. A course without slots never matches.
func (s *CourseService) ListOn(ctx context.Context, ownerID string, date time.Time) ([]models.Course, error) {
	courses, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	matched := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if course.MeetsOn(date) {
			matched = append(matched, course)
		}
	}
	return matched, nil
}

// Get returns a single owned course.
func (s *CourseService) Get(ctx context.Context, ownerID, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create validates and persists a new course for the caller.
func (s *CourseService) Create(ctx context.Context, ownerID string, req models.CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := validateSlots(req.Slots); err != nil {
		return nil, err
	}

	course := &models.Course{
		OwnerID:    ownerID,
		Name:       req.Name,
		CourseCode: req.CourseCode,
		Professor:  req.Professor,
		Slots:      req.Slots,
		Color:      req.Color,
	}
	if req.TargetPercentage != nil {
		course.TargetPercentage = *req.TargetPercentage
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.String("owner_id", ownerID), zap.String("course_id", course.ID))
	return course, nil
}

// Update overwrites an owned course's mutable fields.
func (s *CourseService) Update(ctx context.Context, ownerID, id string, req models.CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := validateSlots(req.Slots); err != nil {
		return nil, err
	}

	course, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	course.Name = req.Name
	course.CourseCode = req.CourseCode
	course.Professor = req.Professor
	course.Slots = req.Slots
	course.Color = req.Color
	if req.TargetPercentage != nil {
		course.TargetPercentage = *req.TargetPercentage
	}
	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Delete removes an owned course together with its attendance marks.
func (s *CourseService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.String("owner_id", ownerID), zap.String("course_id", id))
	return nil
}

func validateSlots(slots models.SlotList) error {
	for _, slot := range slots {
		for _, day := range slot.Days {
			if !models.ValidWeekday(day) {
				return appErrors.Clone(appErrors.ErrValidation, "unknown weekday "+day)
			}
		}
		if slot.StartTime == "" || slot.EndTime == "" {
			return appErrors.Clone(appErrors.ErrValidation, "slot times are required")
		}
	}
	return nil
}
