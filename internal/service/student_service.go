package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/trackademy/batchline/internal/domain"
	"github.com/trackademy/batchline/internal/repository"
	"go.uber.org/zap"
)

type StudentService struct {
	students repository.StudentRepository
	batches  repository.BatchRepository
	logger   *zap.Logger
}

func NewStudentService(
	students repository.StudentRepository,
	batches repository.BatchRepository,
	logger *zap.Logger,
) (*StudentService, error) {
	if students == nil {
		return nil, fmt.Errorf("student repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StudentService{
		students: students,
		batches:  batches,
		logger:   logger,
	}, nil
}

// Create enrolls a student. The batch number must reference an existing
// batch at enrollment time; the reference is not enforced afterwards.
func (s *StudentService) Create(ctx context.Context, student *domain.Student) (*domain.Student, error) {
	if student == nil {
		return nil, fmt.Errorf("%w: student is required", domain.ErrValidation)
	}

	student.FullName = strings.TrimSpace(student.FullName)
	student.BatchNumber = strings.TrimSpace(student.BatchNumber)
	if student.Status == "" {
		student.Status = domain.StudentStatusActive
	}
	if err := student.Validate(); err != nil {
		return nil, err
	}

	if student.BatchNumber != "" && s.batches != nil {
		exists, err := s.batches.Exists(ctx, student.BatchNumber)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: batch %q does not exist", domain.ErrValidation, student.BatchNumber)
		}
	}

	student.ID = uuid.NewString()
	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info("student enrolled",
		zap.String("studentId", student.ID),
		zap.String("batchNumber", student.BatchNumber),
	)
	return student, nil
}

func (s *StudentService) Get(ctx context.Context, id string) (*domain.Student, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: student id is required", domain.ErrValidation)
	}
	return retryOnce(ctx, func() (*domain.Student, error) {
		return s.students.GetByID(ctx, id)
	})
}

// List returns students, optionally filtered to one batch. Students whose
// batch was deleted still appear in the unfiltered listing with their
// dangling batch number intact.
func (s *StudentService) List(ctx context.Context, batchNumber string) ([]domain.Student, error) {
	return retryOnce(ctx, func() ([]domain.Student, error) {
		return s.students.List(ctx, strings.TrimSpace(batchNumber))
	})
}

func (s *StudentService) Update(ctx context.Context, student *domain.Student) error {
	if student == nil || strings.TrimSpace(student.ID) == "" {
		return fmt.Errorf("%w: student id is required", domain.ErrValidation)
	}
	if err := student.Validate(); err != nil {
		return err
	}
	return s.students.Update(ctx, student)
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: student id is required", domain.ErrValidation)
	}
	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("student removed", zap.String("studentId", id))
	return nil
}

// ResolveBatch looks up the student's batch, reporting a dangling
// reference distinctly from other lookup failures.
func (s *StudentService) ResolveBatch(ctx context.Context, student *domain.Student) (*domain.Batch, error) {
	if s.batches == nil || student == nil || student.BatchNumber == "" {
		return nil, domain.ErrNotFound
	}
	batch, err := s.batches.GetByID(ctx, student.BatchNumber)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Debug("student references a deleted batch",
			zap.String("studentId", student.ID),
			zap.String("batchNumber", student.BatchNumber),
		)
	}
	return batch, err
}
