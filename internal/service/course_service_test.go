package service

import (
	"context"
	"errors"
	"testing"

	"github.com/trackademy/batchline/internal/domain"
	"go.uber.org/zap"
)

func newTestCourseService(t *testing.T, courses *fakeCourseRepo) *CourseService {
	t.Helper()

	svc, err := NewCourseService(courses, zap.NewNop())
	if err != nil {
		t.Fatalf("NewCourseService() error = %v", err)
	}
	return svc
}

func TestCourseCreateDerivesPrefixWhenOmitted(t *testing.T) {
	t.Parallel()

	var created *domain.Course
	courses := &fakeCourseRepo{
		createFn: func(ctx context.Context, c *domain.Course) error {
			created = c
			return nil
		},
	}

	svc := newTestCourseService(t, courses)

	course, err := svc.Create(context.Background(), &domain.Course{Name: "Digital Marketing"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if course.Prefix != "DM" {
		t.Fatalf("prefix = %q, want DM", course.Prefix)
	}
	if created == nil || created.ID == "" {
		t.Fatal("expected course to be stored with a generated id")
	}
}

func TestCourseCreateRejectsBadPrefix(t *testing.T) {
	t.Parallel()

	svc := newTestCourseService(t, &fakeCourseRepo{})

	_, err := svc.Create(context.Background(), &domain.Course{Name: "Cloud Engineering", Prefix: "CLOUD"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestCourseUpdateKeepsPrefixImmutable(t *testing.T) {
	t.Parallel()

	var updated *domain.Course
	courses := &fakeCourseRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Course, error) {
			return &domain.Course{ID: "course-1", Name: "Web Development", Prefix: "WD"}, nil
		},
		updateFn: func(ctx context.Context, c *domain.Course) error {
			updated = c
			return nil
		},
	}

	svc := newTestCourseService(t, courses)

	err := svc.Update(context.Background(), &domain.Course{
		ID:     "course-1",
		Name:   "Modern Web Development",
		Prefix: "MW",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated == nil || updated.Prefix != "WD" {
		t.Fatalf("prefix = %q, want the original WD", updated.Prefix)
	}
}
