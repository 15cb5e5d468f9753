package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/trackademy/batchline/internal/domain"
	"github.com/trackademy/batchline/internal/repository"
	"go.uber.org/zap"
)

type CourseService struct {
	courses repository.CourseRepository
	logger  *zap.Logger
}

func NewCourseService(courses repository.CourseRepository, logger *zap.Logger) (*CourseService, error) {
	if courses == nil {
		return nil, fmt.Errorf("course repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, logger: logger}, nil
}

// Create registers a course. An omitted prefix is derived from the name
// once and then fixed, so renames never renumber existing batches.
func (s *CourseService) Create(ctx context.Context, c *domain.Course) (*domain.Course, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: course is required", domain.ErrValidation)
	}

	c.Name = strings.TrimSpace(c.Name)
	c.Prefix = strings.ToUpper(strings.TrimSpace(c.Prefix))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Prefix == "" {
		c.Prefix = domain.CoursePrefix(c.Name)
	}

	c.ID = uuid.NewString()
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("course registered",
		zap.String("courseId", c.ID),
		zap.String("prefix", c.Prefix),
	)
	return c, nil
}

func (s *CourseService) Get(ctx context.Context, id string) (*domain.Course, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: course id is required", domain.ErrValidation)
	}
	return s.courses.GetByID(ctx, id)
}

func (s *CourseService) List(ctx context.Context) ([]domain.Course, error) {
	return retryOnce(ctx, func() ([]domain.Course, error) {
		return s.courses.List(ctx)
	})
}

// Update changes name and description only. The prefix is immutable after
// creation.
func (s *CourseService) Update(ctx context.Context, c *domain.Course) error {
	if c == nil || strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: course id is required", domain.ErrValidation)
	}

	current, err := s.courses.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Prefix = current.Prefix

	if err := c.Validate(); err != nil {
		return err
	}
	return s.courses.Update(ctx, c)
}

func (s *CourseService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: course id is required", domain.ErrValidation)
	}
	return s.courses.Delete(ctx, id)
}
