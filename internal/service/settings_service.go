package service

import (
	"context"

	"go.uber.org/zap"

	appErrors "github.com/attendly/attendly-api/pkg/errors"
)

type settingsCourseStore interface {
	ClearByOwner(ctx context.Context, ownerID string) error
}

type settingsAttendanceStore interface {
	ClearByOwner(ctx context.Context, ownerID string) error
}

// SettingsService handles the data management operations behind the
// settings screen. All resets are scoped to the calling owner.
type SettingsService struct {
	courses    settingsCourseStore
	attendance settingsAttendanceStore
	logger     *zap.Logger
}

// NewSettingsService constructs a SettingsService instance.
func NewSettingsService(courses settingsCourseStore, attendance settingsAttendanceStore, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{courses: courses, attendance: attendance, logger: logger}
}

// ClearCourses removes every course the owner has. Attendance marks go
// with their courses through the schema cascade.
func (s *SettingsService) ClearCourses(ctx context.Context, ownerID string) error {
	if err := s.courses.ClearByOwner(ctx, ownerID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear courses")
	}
	s.logger.Info("cleared courses", zap.String("owner_id", ownerID))
	return nil
}

// ClearAttendance removes every attendance mark the owner has, keeping the
// courses themselves.
func (s *SettingsService) ClearAttendance(ctx context.Context, ownerID string) error {
	if err := s.attendance.ClearByOwner(ctx, ownerID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance marks")
	}
	s.logger.Info("cleared attendance marks", zap.String("owner_id", ownerID))
	return nil
}

// ClearAll removes the owner's attendance marks and courses. Marks go
// first so a failure midway never leaves marks pointing at nothing.
func (s *SettingsService) ClearAll(ctx context.Context, ownerID string) error {
	if err := s.attendance.ClearByOwner(ctx, ownerID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance marks")
	}
	if err := s.courses.ClearByOwner(ctx, ownerID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear courses")
	}
	s.logger.Info("cleared all data", zap.String("owner_id", ownerID))
	return nil
}
