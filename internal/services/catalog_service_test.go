package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/aula-platform/aula/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogService(courses CourseRepository, subjects SubjectRepository, modules ModuleRepository) *CatalogService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCatalogService(courses, subjects, modules, logger)
}

func TestCatalogService_CreateCourse_RequiresTitle(t *testing.T) {
	svc := newCatalogService(&MockCourseRepository{}, &MockSubjectRepository{}, &MockModuleRepository{})

	course, err := svc.CreateCourse(context.Background(), "   ", "description")

	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.Nil(t, course)
}

func TestCatalogService_CreateCourse_StartsUnpublished(t *testing.T) {
	courses := &MockCourseRepository{
		CreateFunc: func(ctx context.Context, course *models.Course) (*models.Course, error) {
			course.ID = "course1"
			return course, nil
		},
	}

	svc := newCatalogService(courses, &MockSubjectRepository{}, &MockModuleRepository{})

	course, err := svc.CreateCourse(context.Background(), "Algebra I", "Linear equations")

	require.NoError(t, err)
	assert.False(t, course.Published)
}

func TestCatalogService_UpdateCourse_TogglesPublished(t *testing.T) {
	stored := &models.Course{ID: "course1", Title: "Algebra I"}
	courses := &MockCourseRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Course, error) { return stored, nil },
		UpdateFunc: func(ctx context.Context, id string, course *models.Course) (*models.Course, error) {
			return course, nil
		},
	}

	svc := newCatalogService(courses, &MockSubjectRepository{}, &MockModuleRepository{})

	published := true
	course, err := svc.UpdateCourse(context.Background(), "course1", "", "", &published)

	require.NoError(t, err)
	assert.True(t, course.Published)
	assert.Equal(t, "Algebra I", course.Title, "empty title leaves existing title untouched")
}

func TestCatalogService_CreateSubject_RequiresExistingCourse(t *testing.T) {
	courses := &MockCourseRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Course, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newCatalogService(courses, &MockSubjectRepository{}, &MockModuleRepository{})

	subject, err := svc.CreateSubject(context.Background(), "missing-course", "Fractions", 1)

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, subject)
}

func TestCatalogService_CreateModule_RequiresExistingSubject(t *testing.T) {
	subjects := &MockSubjectRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Subject, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newCatalogService(&MockCourseRepository{}, subjects, &MockModuleRepository{})

	module, err := svc.CreateModule(context.Background(), "missing-subject", "Adding fractions", "content", 1)

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, module)
}

func TestCatalogService_ListCourses_PublishedFilterPassedThrough(t *testing.T) {
	var gotPublishedOnly bool
	courses := &MockCourseRepository{
		ListFunc: func(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Course, error) {
			gotPublishedOnly = publishedOnly
			return []*models.Course{}, nil
		},
	}

	svc := newCatalogService(courses, &MockSubjectRepository{}, &MockModuleRepository{})

	_, err := svc.ListCourses(context.Background(), true, 10, 0)

	require.NoError(t, err)
	assert.True(t, gotPublishedOnly)
}
