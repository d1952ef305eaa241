package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly-api/internal/models"
	"github.com/attendly/attendly-api/internal/repository"
	appErrors "github.com/attendly/attendly-api/pkg/errors"
)

type crudRepoStub struct {
	courses map[string]*models.Course
	listed  []models.Course
	created []*models.Course
	updated []*models.Course
	deleted []string
}

func (s *crudRepoStub) ListByOwner(ctx context.Context, ownerID string) ([]models.Course, error) {
	return s.listed, nil
}

func (s *crudRepoStub) FindByID(ctx context.Context, ownerID, id string) (*models.Course, error) {
	if course, ok := s.courses[id]; ok && course.OwnerID == ownerID {
		clone := *course
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (s *crudRepoStub) Create(ctx context.Context, course *models.Course) error {
	course.ID = "course-new"
	s.created = append(s.created, course)
	return nil
}

func (s *crudRepoStub) Update(ctx context.Context, course *models.Course) error {
	if _, ok := s.courses[course.ID]; !ok {
		return repository.ErrNotFound
	}
	s.updated = append(s.updated, course)
	return nil
}

func (s *crudRepoStub) Delete(ctx context.Context, ownerID, id string) error {
	if course, ok := s.courses[id]; !ok || course.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func TestCreateCourseAppliesTargetOverride(t *testing.T) {
	repo := &crudRepoStub{}
	svc := NewCourseService(repo, nil, nil)

	target := 80
	course, err := svc.Create(context.Background(), "owner-1", models.CourseRequest{
		Name:             "Mathematics",
		TargetPercentage: &target,
	})
	require.NoError(t, err)

	assert.Equal(t, "course-new", course.ID)
	assert.Equal(t, 80, course.TargetPercentage)
	assert.Equal(t, "owner-1", course.OwnerID)
}

func TestCreateCourseRejectsUnknownWeekday(t *testing.T) {
	svc := NewCourseService(&crudRepoStub{}, nil, nil)

	_, err := svc.Create(context.Background(), "owner-1", models.CourseRequest{
		Name: "Mathematics",
		Slots: models.SlotList{
			{Days: []string{"Monday"}, StartTime: "09:00", EndTime: "10:00"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateCourseKeepsIdentity(t *testing.T) {
	repo := &crudRepoStub{courses: map[string]*models.Course{
		"course-1": {ID: "course-1", OwnerID: "owner-1", Name: "Maths", TargetPercentage: 75},
	}}
	svc := NewCourseService(repo, nil, nil)

	course, err := svc.Update(context.Background(), "owner-1", "course-1", models.CourseRequest{Name: "Mathematics"})
	require.NoError(t, err)

	assert.Equal(t, "course-1", course.ID)
	assert.Equal(t, "Mathematics", course.Name)
	assert.Equal(t, 75, course.TargetPercentage, "omitted target stays unchanged")
}

func TestUpdateCourseOwnerScoped(t *testing.T) {
	repo := &crudRepoStub{courses: map[string]*models.Course{
		"course-1": {ID: "course-1", OwnerID: "owner-1", Name: "Maths"},
	}}
	svc := NewCourseService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "intruder", "course-1", models.CourseRequest{Name: "Hijacked"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updated)
}

func TestDeleteCourseNotFound(t *testing.T) {
	svc := NewCourseService(&crudRepoStub{}, nil, nil)

	err := svc.Delete(context.Background(), "owner-1", "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListOnFiltersByWeekday(t *testing.T) {
	repo := &crudRepoStub{listed: []models.Course{
		{Name: "Mathematics", Slots: models.SlotList{{Days: []string{"Mon", "Wed"}, StartTime: "09:00", EndTime: "10:00"}}},
		{Name: "Physics", Slots: models.SlotList{{Days: []string{"Tue"}, StartTime: "11:00", EndTime: "12:00"}}},
		{Name: "Elective"},
	}}
	svc := NewCourseService(repo, nil, nil)

	monday := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	courses, err := svc.ListOn(context.Background(), "owner-1", monday)
	require.NoError(t, err)

	require.Len(t, courses, 1)
	assert.Equal(t, "Mathematics", courses[0].Name)
}
